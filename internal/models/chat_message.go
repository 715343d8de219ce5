package models

import "fmt"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a follow-up conversation about generated docs.
// Turns are supplied by the caller on every request and never stored.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Validate rejects roles other than user and assistant.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("unsupported chat role %q", m.Role)
	}
}
