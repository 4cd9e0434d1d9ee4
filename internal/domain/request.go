package domain

// MessagesResponse is returned by the fetch messages command.
type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

// SessionsResponse is returned by the list sessions command.
type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

// DeleteMessageRequest identifies the message to delete.
type DeleteMessageRequest struct {
	MessageID string `json:"message_id"`
}

// AckResponse is a generic OK response.
type AckResponse struct {
	OK bool `json:"ok"`
}

// WindowStateResponse reports the state of a window after a window command.
type WindowStateResponse struct {
	Window  WindowName `json:"window"`
	Visible bool       `json:"visible"`
}

// SignalResponse is returned after a signal was emitted.
type SignalResponse struct {
	Signal    Signal `json:"signal"`
	Delivered int    `json:"delivered"`
}

// Shortcut binds a host accelerator to a signal.
type Shortcut struct {
	Accelerator string `json:"accelerator"`
	Signal      Signal `json:"signal"`
}

// ShortcutsResponse lists the hotkey bindings the host should register.
type ShortcutsResponse struct {
	Shortcuts []Shortcut `json:"shortcuts"`
}

// DefaultShortcuts are the global hotkeys published to the host runtime.
var DefaultShortcuts = []Shortcut{
	{Accelerator: "CmdOrCtrl+Shift+Space", Signal: SignalToggleConsole},
	{Accelerator: "CmdOrCtrl+Shift+D", Signal: SignalToggleDashboard},
}

// ErrorResponse is the JSON error body returned at the transport edge.
type ErrorResponse struct {
	Error string `json:"error"`
}
