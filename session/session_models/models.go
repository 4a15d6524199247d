package session_models

import "errors"

// ErrNotFound is returned when a session is absent or has expired.
var ErrNotFound = errors.New("session not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversational turn. Immutable once appended;
// ordering is the append sequence.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
