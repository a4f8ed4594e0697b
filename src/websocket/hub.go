package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	logger "github.com/sirupsen/logrus"

	"signalengine/src/model"
	"signalengine/src/position"
)

// Message is the envelope streamed to dashboard clients.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

const (
	MessageExecution     = "execution"
	MessagePositionEvent = "position_event"
	MessageSummary       = "portfolio"
)

// Hub fans engine events out to connected clients. Slow clients whose
// buffer is full are dropped rather than blocking the engine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	dropped    atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast until ctx ends or Stop is called.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.Stop()
		h.closeAll()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			logger.WithField("clients", n).Info("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			logger.WithField("clients", n).Info("websocket client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			removed := 0
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
					removed++
				}
			}
			n := len(h.clients)
			h.mu.Unlock()
			if removed > 0 {
				logger.WithFields(logger.Fields{"removed": removed, "clients": n}).Warn("removed slow websocket clients")
			}
		}
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// Broadcast encodes msg and queues it without blocking. When the queue is
// full the message is dropped and counted.
func (h *Hub) Broadcast(msgType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: msgType, Timestamp: time.Now().UTC(), Data: data})
	if err != nil {
		logger.WithError(err).WithField("type", msgType).Error("failed to encode websocket message")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) DroppedMessages() int64 {
	return h.dropped.Load()
}

func (h *Hub) OnExecution(_ context.Context, res model.ExecutionResult) {
	h.Broadcast(MessageExecution, res)
}

func (h *Hub) OnPositionEvent(_ context.Context, ev position.Event) {
	if ev.Kind == position.EventError {
		return
	}
	h.Broadcast(MessagePositionEvent, ev)
}

func (h *Hub) OnSummary(_ context.Context, s model.PortfolioSummary) {
	h.Broadcast(MessageSummary, s)
}
