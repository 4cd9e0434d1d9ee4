package domain

import "time"

// Session groups the messages captured from one device.
type Session struct {
	ID            string     `json:"id"`
	DeviceID      string     `json:"device_id"`
	Title         string     `json:"title,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// Message is a single captured text stored in a session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Fragment is the transient payload sent by the frontend. It is never stored
// as-is; intake turns it into a Message.
type Fragment struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp uint64 `json:"timestamp"` // client clock, unix millis
	Processed *bool  `json:"processed,omitempty"`
}

// MarkProcessed sets the processed flag.
func (f *Fragment) MarkProcessed() {
	processed := true
	f.Processed = &processed
}

// IsProcessed reports whether intake completed for the fragment.
func (f Fragment) IsProcessed() bool {
	return f.Processed != nil && *f.Processed
}
