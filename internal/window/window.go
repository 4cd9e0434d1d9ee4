// Package window defines the window control surface provided by the host
// runtime, plus an in-process host used when no native shell is attached.
package window

import (
	"errors"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// ErrNoWindow is returned by Lookup when the host has no window of that name.
var ErrNoWindow = errors.New("window not found")

// Window is a single host window.
type Window interface {
	IsVisible() (bool, error)
	Show() error
	Hide() error
	SetFocus() error
	Center() error
}

// Host resolves named windows.
type Host interface {
	Lookup(name domain.WindowName) (Window, error)
}
