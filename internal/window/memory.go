package window

import (
	"log"
	"sync"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// MemoryHost is an in-process Host that only tracks window state.
type MemoryHost struct {
	mu      sync.RWMutex
	windows map[domain.WindowName]*MemoryWindow
}

// NewMemoryHost creates a host with the given windows, all hidden.
func NewMemoryHost(names ...domain.WindowName) *MemoryHost {
	h := &MemoryHost{windows: make(map[domain.WindowName]*MemoryWindow)}
	for _, name := range names {
		h.windows[name] = &MemoryWindow{name: name}
	}
	return h
}

// Lookup implements Host.
func (h *MemoryHost) Lookup(name domain.WindowName) (Window, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	w, ok := h.windows[name]
	if !ok {
		return nil, ErrNoWindow
	}
	return w, nil
}

// State returns a copy of the named window's state.
func (h *MemoryHost) State(name domain.WindowName) (MemoryState, bool) {
	h.mu.RLock()
	w, ok := h.windows[name]
	h.mu.RUnlock()
	if !ok {
		return MemoryState{}, false
	}
	return w.State(), true
}

// MemoryState is the observable state of a MemoryWindow.
type MemoryState struct {
	Visible  bool
	Focused  bool
	Centered bool
}

// MemoryWindow implements Window without a display.
type MemoryWindow struct {
	name  domain.WindowName
	mu    sync.Mutex
	state MemoryState
}

// State returns a copy of the window state.
func (w *MemoryWindow) State() MemoryState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *MemoryWindow) IsVisible() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Visible, nil
}

func (w *MemoryWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Visible = true
	log.Printf("Window %s shown", w.name)
	return nil
}

func (w *MemoryWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Visible = false
	w.state.Focused = false
	log.Printf("Window %s hidden", w.name)
	return nil
}

func (w *MemoryWindow) SetFocus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Focused = w.state.Visible
	return nil
}

func (w *MemoryWindow) Center() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Centered = true
	return nil
}
