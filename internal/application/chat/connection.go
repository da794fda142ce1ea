package chat

import (
	"context"
	"sync"

	"github.com/emedico/backend/internal/domain/chat"
)

// Connection is one live view of a conversation, such as a WebSocket.
// Replies to messages sent through it are cancelled when it closes.
type Connection struct {
	service   *Service
	sessionID string
	id        int
	messages  chan chat.Message
	history   []chat.Message
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// SessionID returns the session the connection belongs to
func (c *Connection) SessionID() string {
	return c.sessionID
}

// History returns the messages that existed when the connection opened
func (c *Connection) History() []chat.Message {
	return c.history
}

// Messages delivers every message appended after the connection opened.
// The channel is closed when the connection or conversation closes.
func (c *Connection) Messages() <-chan chat.Message {
	return c.messages
}

// Done is closed when the connection or its conversation closes
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Send posts a user message whose reply is owned by this connection
func (c *Connection) Send(text string) (*chat.Message, error) {
	if c.ctx.Err() != nil {
		return nil, ErrConnectionClosed
	}
	return c.service.post(c.ctx, c.sessionID, text)
}

// Close detaches the connection and cancels its pending replies
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.service.detach(c.sessionID, c.id, c.messages)
	})
}
