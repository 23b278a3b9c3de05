package domain

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single call to the text-generation service.
type ChatRequest struct {
	Turns       []Turn
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// Conversation is the windowed turn history of one document. Turn 0 is the
// system instructions turn and is never evicted.
type Conversation struct {
	turns []Turn
}

func NewConversation(system string) *Conversation {
	return &Conversation{turns: []Turn{{Role: RoleSystem, Content: system}}}
}

func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Len() int { return len(c.turns) }

func (c *Conversation) Append(role Role, content string) {
	c.turns = append(c.turns, Turn{Role: role, Content: content})
}

// DropLast removes the newest turn when it has the given role.
func (c *Conversation) DropLast(role Role) {
	n := len(c.turns)
	if n > 1 && c.turns[n-1].Role == role {
		c.turns = c.turns[:n-1]
	}
}

// KeepRecent retains the system turn plus at most n of the newest turns.
func (c *Conversation) KeepRecent(n int) {
	if n < 0 {
		n = 0
	}
	history := len(c.turns) - 1
	if history <= n {
		return
	}
	kept := make([]Turn, 0, n+1)
	kept = append(kept, c.turns[0])
	kept = append(kept, c.turns[len(c.turns)-n:]...)
	c.turns = kept
}
