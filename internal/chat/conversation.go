// Package chat drives the multi-turn protocol between the caller, the
// language model, and the tool handlers.
package chat

import (
	"strings"

	"github.com/campusbuddy/campusbuddy-go/internal/llm"
)

// Conversation is an append-only message log. The orchestrator appends
// to it but never reorders or deletes entries: append order is the
// single source of truth for what the model sees on the next call.
type Conversation struct {
	msgs []llm.Message
}

// NewConversation creates a log seeded with the caller-supplied history.
func NewConversation(history []llm.Message) *Conversation {
	msgs := make([]llm.Message, len(history))
	copy(msgs, history)
	return &Conversation{msgs: msgs}
}

// Append adds one message to the end of the log.
func (c *Conversation) Append(msg llm.Message) {
	c.msgs = append(c.msgs, msg)
}

// Messages returns a copy of the log for a model call.
func (c *Conversation) Messages() []llm.Message {
	out := make([]llm.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int {
	return len(c.msgs)
}

// LatestUserText returns the most recent user message's content, or the
// empty string when the log has none.
func (c *Conversation) LatestUserText() string {
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].Role == llm.RoleUser {
			return strings.TrimSpace(c.msgs[i].Content)
		}
	}
	return ""
}
