package domain

// Role identifies the author of a chat message.
type Role string

// Roles used in grading prompts.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// ChatMessage is one provider-agnostic prompt message.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Prompt is the pair of messages produced for every grading attempt.
type Prompt struct {
	System ChatMessage `json:"system"`
	User   ChatMessage `json:"user"`
}

// Messages returns the prompt as an ordered message list, system first.
func (p Prompt) Messages() []ChatMessage {
	return []ChatMessage{p.System, p.User}
}
