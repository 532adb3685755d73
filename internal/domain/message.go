package domain

import "time"

type MessageID string

type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleAgent MessageRole = "agent"
)

// Message is an append-only chat entry. Once cached a message is never
// mutated; new content only ever arrives as new messages.
type Message struct {
	ID        MessageID
	AgentID   AgentID
	Role      MessageRole
	Text      string
	Timestamp time.Time
	Persona   string
}
