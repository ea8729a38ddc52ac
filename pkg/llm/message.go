// Package llm holds the provider-agnostic conversation types shared between
// the stream transport and its callers.
package llm

// Conversation roles understood by the completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation. Messages are
// immutable and caller-supplied; the transport never mutates them.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}
