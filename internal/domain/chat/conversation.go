package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Greeting opens every conversation
const Greeting = "Hello! How can I help you today? Ask about medicines, orders, or prescriptions."

// Sender identifies who wrote a message
type Sender string

// Senders
const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one chat bubble
type Message struct {
	ID     uuid.UUID `json:"id"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// NewMessage creates a message stamped with the current time
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:     uuid.New(),
		Sender: sender,
		Text:   text,
		SentAt: time.Now(),
	}
}

// Clean trims surrounding whitespace from user input. Blank input cleans to
// "" and is ignored.
func Clean(text string) string {
	return strings.TrimSpace(text)
}

// ScriptedReply is the assistant's answer to a user message
func ScriptedReply(text string) string {
	return fmt.Sprintf("I received: \"%s\". I'm still learning!", text)
}

// Conversation is the message history of one session's assistant
type Conversation struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// NewConversation starts a conversation with the greeting
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		Messages:  []Message{NewMessage(SenderBot, Greeting)},
	}
}

// Append adds a message to the history
func (c *Conversation) Append(m Message) {
	c.Messages = append(c.Messages, m)
}

// History returns a copy of the messages
func (c *Conversation) History() []Message {
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}
