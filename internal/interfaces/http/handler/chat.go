package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	chatapp "github.com/emedico/backend/internal/application/chat"
	"github.com/emedico/backend/internal/domain/chat"
	"github.com/emedico/backend/internal/infrastructure/logger"
	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Chat frame types
const (
	FrameMessage = "message"
	FrameError   = "error"
)

const maxChatTextLength = 2000

// ChatHandlerConfig tunes the chat WebSocket
type ChatHandlerConfig struct {
	// AllowedOrigins restricts browser origins; empty or "*" allows any
	AllowedOrigins []string
	WriteTimeout   time.Duration
	PongWait       time.Duration
	MaxFrameBytes  int64
}

// DefaultChatHandlerConfig returns the default socket settings
func DefaultChatHandlerConfig() ChatHandlerConfig {
	return ChatHandlerConfig{
		WriteTimeout:  10 * time.Second,
		PongWait:      60 * time.Second,
		MaxFrameBytes: 8 << 10,
	}
}

// ChatHandler serves the assistant over HTTP and WebSocket
type ChatHandler struct {
	BaseHandler
	chat     *chatapp.Service
	config   ChatHandlerConfig
	upgrader websocket.Upgrader
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chat *chatapp.Service, cfg ChatHandlerConfig) *ChatHandler {
	defaults := DefaultChatHandlerConfig()
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaults.PongWait
	}
	if cfg.MaxFrameBytes <= 0 {
		cfg.MaxFrameBytes = defaults.MaxFrameBytes
	}
	h := &ChatHandler{chat: chat, config: cfg}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

// PostChatMessageRequest is a user chat message
type PostChatMessageRequest struct {
	Text string `json:"text" binding:"max=2000" example:"Do you have ibuprofen?"`
}

// PostChatMessageResponse echoes the accepted message. Message is null and
// Ignored true for blank input.
type PostChatMessageResponse struct {
	Message *chat.Message `json:"message"`
	Ignored bool          `json:"ignored"`
}

// ChatFrame is the JSON frame exchanged over the socket. Clients send
// {type:"message", content}; the server sends every appended message
// and error frames.
type ChatFrame struct {
	Type      string     `json:"type"`
	SessionID string     `json:"session_id"`
	Content   string     `json:"content"`
	MessageID *uuid.UUID `json:"message_id,omitempty"`
	Sender    string     `json:"sender,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

func messageFrame(sessionID string, m chat.Message) ChatFrame {
	return ChatFrame{
		Type:      FrameMessage,
		SessionID: sessionID,
		Content:   m.Text,
		MessageID: &m.ID,
		Sender:    string(m.Sender),
		SentAt:    &m.SentAt,
	}
}

// History handles GET /sessions/{id}/chat: get chat history.
// Starts with the assistant greeting.
func (h *ChatHandler) History(c *gin.Context) {
	messages, err := h.chat.History(sessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, messages)
}

// PostMessage handles POST /sessions/{id}/chat/messages: send a chat message.
// The reply is appended to the history after the reply delay.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req PostChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	msg, err := h.chat.Post(sessionID(c), req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if msg == nil {
		h.Success(c, PostChatMessageResponse{Ignored: true})
		return
	}
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(PostChatMessageResponse{Message: msg}))
}

// Connect handles GET /sessions/{id}/chat/ws: chat WebSocket.
// Replays the history, then streams every new message. Replies to.
func (h *ChatHandler) Connect(c *gin.Context) {
	sid := sessionID(c)
	log := logger.L(c.Request.Context())

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		log.Debug("Chat websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	live, err := h.chat.Connect(sid)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "chat unavailable"))
		return
	}
	defer live.Close()

	s := &chatSocket{
		conn:      conn,
		live:      live,
		sessionID: sid,
		config:    h.config,
		errs:      make(chan string, 4),
		log:       log,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop()
	}()

	s.readLoop()
	live.Close()
	wg.Wait()
}

// chatSocket pumps one WebSocket. All writes happen on the write loop.
type chatSocket struct {
	conn      *websocket.Conn
	live      *chatapp.Connection
	sessionID string
	config    ChatHandlerConfig
	errs      chan string
	log       *zap.Logger
}

func (s *chatSocket) readLoop() {
	s.conn.SetReadLimit(s.config.MaxFrameBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.config.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.PongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Chat websocket read failed", zap.Error(err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.config.PongWait))

		var frame ChatFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.fail("invalid message format")
			continue
		}
		if frame.Type != FrameMessage {
			s.fail("unknown message type: " + frame.Type)
			continue
		}
		if len(frame.Content) > maxChatTextLength {
			s.fail("message is too long")
			continue
		}

		if _, err := s.live.Send(frame.Content); err != nil {
			if errors.Is(err, chatapp.ErrConnectionClosed) || errors.Is(err, chatapp.ErrServiceClosed) {
				return
			}
			s.fail("message could not be delivered")
		}
	}
}

func (s *chatSocket) fail(message string) {
	select {
	case s.errs <- message:
	default:
	}
}

func (s *chatSocket) writeLoop() {
	ping := time.NewTicker(s.config.PongWait * 9 / 10)
	defer ping.Stop()
	// Unblock the reader once writing stops
	defer s.conn.Close()

	for _, m := range s.live.History() {
		if !s.write(messageFrame(s.sessionID, m)) {
			return
		}
	}

	messages := s.live.Messages()
	for {
		select {
		case m, ok := <-messages:
			if !ok {
				_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "conversation closed"))
				return
			}
			if !s.write(messageFrame(s.sessionID, m)) {
				return
			}
		case msg := <-s.errs:
			if !s.write(ChatFrame{Type: FrameError, SessionID: s.sessionID, Content: msg}) {
				return
			}
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *chatSocket) write(frame ChatFrame) bool {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(frame); err != nil {
		s.log.Debug("Chat websocket write failed", zap.Error(err))
		return false
	}
	return true
}

// originChecker allows same-host requests, requests without an Origin
// header and the configured origins
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
