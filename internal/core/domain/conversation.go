package domain

import "strings"

// Turn is one question/answer exchange in a session.
type Turn struct {
	Question string
	Answer   string
}

// Conversation is the ordered log of prior turns within one session.
// It is append-only and never persisted; the session ends with the
// process. No size cap is enforced, so very long sessions produce
// correspondingly long prompts.
type Conversation struct {
	turns []Turn
}

// Append records a completed turn. Insertion order is preserved.
func (c *Conversation) Append(turn Turn) {
	c.turns = append(c.turns, turn)
}

// Len returns the number of recorded turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Turns returns a copy of the recorded turns in chronological order.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Render produces a chronological transcript suitable for prompt
// inclusion. Returns the empty string when no turns are recorded.
func (c *Conversation) Render() string {
	if len(c.turns) == 0 {
		return ""
	}

	var b strings.Builder
	for _, t := range c.turns {
		b.WriteString("Human: ")
		b.WriteString(t.Question)
		b.WriteString("\nAssistant: ")
		b.WriteString(t.Answer)
		b.WriteString("\n")
	}
	return b.String()
}
