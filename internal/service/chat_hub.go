package service

import (
	"context"
	"encoding/json"
	"learning_system_backend/internal/model"
	"learning_system_backend/pkg/logger"
	"learning_system_backend/pkg/monitoring"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	chatChannel = "chat_thread_channel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is the frame pushed to websocket clients.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// inbound is the frame a client sends: just the message body.
type inbound struct {
	Body string `json:"body"`
}

// MessageSink stores a message received over a websocket and broadcasts it.
type MessageSink interface {
	PostMessage(threadID, senderID uint, role model.UserRole, body string) (*model.ChatMessage, error)
}

type Client struct {
	ID       string
	Hub      *ChatHub
	Conn     *websocket.Conn
	Send     chan []byte
	ThreadID uint
	UserID   uint
	Role     model.UserRole
	Limiter  *rate.Limiter
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.String("clientId", c.ID), zap.Uint("userId", c.UserID))
			}
			break
		}

		if !c.Limiter.Allow() {
			continue
		}

		var in inbound
		if err := json.Unmarshal(message, &in); err != nil || in.Body == "" {
			c.sendError("invalid message")
			continue
		}
		monitoring.ChatMessages.WithLabelValues("in").Inc()

		if c.Hub.Sink == nil {
			continue
		}
		if _, err := c.Hub.Sink.PostMessage(c.ThreadID, c.UserID, c.Role, in.Body); err != nil {
			logger.Log.Error("Failed to store chat message", zap.Error(err), zap.Uint("threadId", c.ThreadID))
			c.sendError("message not stored")
		}
	}
}

func (c *Client) sendError(msg string) {
	data, _ := json.Marshal(WSMessage{Type: "ERROR", Data: msg})
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type threadEnvelope struct {
	ThreadID uint            `json:"threadId"`
	Payload  json.RawMessage `json:"payload"`
}

// ChatHub tracks websocket clients per thread. With Redis configured, broadcasts
// go through pub/sub so every instance delivers to its own clients.
type ChatHub struct {
	mu      sync.RWMutex
	threads map[uint]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	local      chan threadEnvelope
	done       chan struct{}

	Redis *redis.Client
	Sink  MessageSink
}

func NewChatHub(rdb *redis.Client) *ChatHub {
	return &ChatHub{
		threads:    make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		local:      make(chan threadEnvelope, 256),
		done:       make(chan struct{}),
		Redis:      rdb,
	}
}

// Run serves registrations and local broadcasts until ctx is cancelled, then
// closes every connection.
func (h *ChatHub) Run(ctx context.Context) {
	defer close(h.done)
	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(ctx, chatChannel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				var env threadEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					logger.Log.Error("PubSub unmarshal error", zap.Error(err))
					continue
				}
				h.deliver(env.ThreadID, env.Payload)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.threads[client.ThreadID] == nil {
				h.threads[client.ThreadID] = make(map[*Client]struct{})
			}
			h.threads[client.ThreadID][client] = struct{}{}
			h.mu.Unlock()
			monitoring.ChatConnections.Inc()
		case client := <-h.unregister:
			h.remove(client)
		case env := <-h.local:
			h.deliver(env.ThreadID, env.Payload)
		}
	}
}

func (h *ChatHub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.threads[client.ThreadID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.threads, client.ThreadID)
	}
	monitoring.ChatConnections.Dec()
}

func (h *ChatHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	count := 0
	for threadID, clients := range h.threads {
		for client := range clients {
			close(client.Send)
			count++
		}
		delete(h.threads, threadID)
	}
	monitoring.ChatConnections.Set(0)
	logger.Log.Info("ChatHub stopped", zap.Int("closedConnections", count))
}

// deliver drops the frame for clients whose send buffer is full.
func (h *ChatHub) deliver(threadID uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.threads[threadID] {
		select {
		case client.Send <- payload:
			monitoring.ChatMessages.WithLabelValues("out").Inc()
		default:
		}
	}
}

// Broadcast sends msg to every connection subscribed to the thread.
func (h *ChatHub) Broadcast(threadID uint, msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Broadcast marshal error", zap.Error(err))
		return
	}

	if h.Redis != nil {
		env, _ := json.Marshal(threadEnvelope{ThreadID: threadID, Payload: payload})
		err := h.Redis.Publish(context.Background(), chatChannel, env).Err()
		if err == nil {
			return
		}
		logger.Log.Warn("Redis publish failed, delivering locally", zap.Error(err))
	}

	select {
	case h.local <- threadEnvelope{ThreadID: threadID, Payload: payload}:
	default:
		logger.Log.Warn("Chat broadcast queue full", zap.Uint("threadId", threadID))
	}
}

// Connections reports how many clients are subscribed to a thread.
func (h *ChatHub) Connections(threadID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.threads[threadID])
}

func ServeWs(hub *ChatHub, w http.ResponseWriter, r *http.Request, threadID, userID uint, role model.UserRole) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &Client{
		ID:       uuid.NewString(),
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		ThreadID: threadID,
		UserID:   userID,
		Role:     role,
		Limiter:  rate.NewLimiter(rate.Limit(10), 20),
	}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
