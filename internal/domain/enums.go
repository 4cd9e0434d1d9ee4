// Package domain defines the core domain models for muednote.
package domain

// Role is the producer tag stored on a message.
type Role string

const (
	// RoleUser is the only role produced by fragment intake.
	RoleUser Role = "user"
)

// DefaultDeviceID is the device tag every intake resolves its session under.
const DefaultDeviceID = "default"

// Signal is a payload-less event pushed to the frontend.
type Signal string

const (
	SignalToggleConsole   Signal = "toggle-console"
	SignalToggleDashboard Signal = "toggle-dashboard"
)

// Valid reports whether s is one of the known signals.
func (s Signal) Valid() bool {
	switch s {
	case SignalToggleConsole, SignalToggleDashboard:
		return true
	}
	return false
}

// WindowName identifies a host window.
type WindowName string

const (
	WindowMain    WindowName = "main"
	WindowOverlay WindowName = "overlay"
)

// IntakeMode selects the fragment processor.
type IntakeMode string

const (
	IntakeModePersist  IntakeMode = "persist"
	IntakeModeSimulate IntakeMode = "simulate"
)

// PolicyDecision is the outcome of the intake policy.
type PolicyDecision string

const (
	PolicyAllow PolicyDecision = "allow"
	PolicyBlock PolicyDecision = "block"
)
