package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/emedico/backend/internal/domain/chat"
	"github.com/emedico/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultReplyDelay is how long the assistant "thinks" before answering
const DefaultReplyDelay = time.Second

const subscriberBuffer = 16

// Errors returned by the chat service
var (
	ErrServiceClosed    = errors.New("chat service is shut down")
	ErrConnectionClosed = errors.New("chat connection is closed")
)

// Service owns the assistant conversation of every session. Replies are
// scheduled tasks bound to their owner: closing the conversation, the
// connection that posted the message, or the whole service cancels them
// before they can touch the history.
type Service struct {
	mu         sync.Mutex
	rooms      map[string]*room
	replyDelay time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	pending    sync.WaitGroup
	metrics    *telemetry.StorefrontMetrics
	logger     *zap.Logger
}

type room struct {
	conv        *chat.Conversation
	ctx         context.Context
	cancel      context.CancelFunc
	subscribers map[int]chan chat.Message
	nextID      int
}

// NewService creates a new chat service
func NewService(replyDelay time.Duration, logger *zap.Logger) *Service {
	if replyDelay < 0 {
		replyDelay = DefaultReplyDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		rooms:      make(map[string]*room),
		replyDelay: replyDelay,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// SetMetrics sets the storefront metrics recorder
func (s *Service) SetMetrics(m *telemetry.StorefrontMetrics) {
	s.metrics = m
}

// History returns the session's messages, starting the conversation with
// the greeting on first use
func (s *Service) History(sessionID string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.roomLocked(sessionID)
	if err != nil {
		return nil, err
	}
	return r.conv.History(), nil
}

// Post appends a user message and schedules the reply. The reply lives as
// long as the conversation. Blank text is ignored and yields nil.
func (s *Service) Post(sessionID, text string) (*chat.Message, error) {
	return s.post(context.Background(), sessionID, text)
}

// Connect attaches a live connection to the session's conversation
func (s *Service) Connect(sessionID string) (*Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.roomLocked(sessionID)
	if err != nil {
		return nil, err
	}

	id := r.nextID
	r.nextID++
	ch := make(chan chat.Message, subscriberBuffer)
	r.subscribers[id] = ch

	ctx, cancel := context.WithCancel(r.ctx)
	s.metrics.ChatConnectionOpened(ctx)
	return &Connection{
		service:   s,
		sessionID: sessionID,
		id:        id,
		messages:  ch,
		history:   r.conv.History(),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Close disposes of the session's conversation. Pending replies are
// cancelled and live connections see their message channel closed.
func (s *Service) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[sessionID]
	if !ok {
		return
	}
	delete(s.rooms, sessionID)
	r.close()
}

// Shutdown closes every conversation and waits for in-flight replies to
// observe the cancellation
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	for id, r := range s.rooms {
		delete(s.rooms, id)
		r.close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) post(owner context.Context, sessionID, text string) (*chat.Message, error) {
	text = chat.Clean(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.roomLocked(sessionID)
	if err != nil {
		return nil, err
	}

	msg := chat.NewMessage(chat.SenderUser, text)
	r.conv.Append(msg)
	r.broadcast(msg)
	s.scheduleLocked(r, owner, text)
	return &msg, nil
}

// scheduleLocked starts the reply task for text. The task is cancelled
// with the room or with owner, whichever ends first.
func (s *Service) scheduleLocked(r *room, owner context.Context, text string) {
	ctx, cancel := context.WithCancel(r.ctx)
	stop := context.AfterFunc(owner, cancel)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer stop()
		defer cancel()

		timer := time.NewTimer(s.replyDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			s.metrics.RecordChatReply(context.Background(), "cancelled")
			return
		case <-timer.C:
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		// Close and Shutdown cancel under s.mu, so this check is final
		if ctx.Err() != nil {
			s.metrics.RecordChatReply(context.Background(), "cancelled")
			return
		}
		reply := chat.NewMessage(chat.SenderBot, chat.ScriptedReply(text))
		r.conv.Append(reply)
		r.broadcast(reply)
		s.metrics.RecordChatReply(context.Background(), "delivered")
	}()
}

func (s *Service) roomLocked(sessionID string) (*room, error) {
	if s.ctx.Err() != nil {
		return nil, ErrServiceClosed
	}
	if r, ok := s.rooms[sessionID]; ok {
		return r, nil
	}
	ctx, cancel := context.WithCancel(s.ctx)
	r := &room{
		conv:        chat.NewConversation(sessionID),
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[int]chan chat.Message),
	}
	s.rooms[sessionID] = r
	return r, nil
}

func (s *Service) detach(sessionID string, id int, ch chan chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.ChatConnectionClosed(context.Background())
	r, ok := s.rooms[sessionID]
	if !ok {
		return
	}
	// the room may have been replaced since the connection opened
	if current, ok := r.subscribers[id]; ok && current == ch {
		delete(r.subscribers, id)
		close(ch)
	}
}

// broadcast delivers m to every connection; a connection that is not
// keeping up misses the message rather than stalling the room
func (r *room) broadcast(m chat.Message) {
	for _, ch := range r.subscribers {
		select {
		case ch <- m:
		default:
		}
	}
}

func (r *room) close() {
	r.cancel()
	for id, ch := range r.subscribers {
		delete(r.subscribers, id)
		close(ch)
	}
}
