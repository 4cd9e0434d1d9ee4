// Package protocol defines the WebSocket messages pushed to frontends.
package protocol

// Message types from server to frontend. Signal names are sent verbatim as
// their own type.
const (
	TypeHelloAck = "hello_ack"
	TypeError    = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type string `json:"type"`
	Ts   int64  `json:"ts"`
}

// HelloAckMessage is sent right after a frontend connects.
type HelloAckMessage struct {
	BaseMessage
	ConnectionID string `json:"connection_id"`
}

// SignalMessage carries a payload-less signal such as toggle-console.
type SignalMessage struct {
	BaseMessage
}

// ErrorMessage is sent when the server cannot handle a frontend message.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeReadOnly       = "read_only"
)
