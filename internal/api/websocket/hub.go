package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/m5cents/call-screening-backend/internal/service/callrouting"
)

// HubConfig configures the call event hub.
type HubConfig struct {
	MaxClients          int           `json:"max_clients"`
	BroadcastBufferSize int           `json:"broadcast_buffer_size"`
	ClientBufferSize    int           `json:"client_buffer_size"`
	PingInterval        time.Duration `json:"ping_interval"`
	PongTimeout         time.Duration `json:"pong_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout"`
	MaxMessageSize      int64         `json:"max_message_size"`
}

// DefaultHubConfig returns the defaults for a small dashboard audience.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		MaxClients:          100,
		BroadcastBufferSize: 512,
		ClientBufferSize:    64,
		PingInterval:        30 * time.Second,
		PongTimeout:         60 * time.Second,
		WriteTimeout:        10 * time.Second,
		MaxMessageSize:      4 * 1024,
	}
}

// Hub fans routing-engine notifications out to connected dashboard clients.
// A slow or dead client loses events rather than stalling the hub.
type Hub struct {
	logger      *zap.Logger
	config      HubConfig
	clients     map[uuid.UUID]*Client
	clientsLock sync.RWMutex
	broadcast   chan callrouting.Notification
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}
	dropped     int64
	droppedLock sync.Mutex
}

// NewHub creates a call event hub.
func NewHub(logger *zap.Logger, config HubConfig) *Hub {
	return &Hub{
		logger:     logger,
		config:     config,
		clients:    make(map[uuid.UUID]*Client),
		broadcast:  make(chan callrouting.Notification, config.BroadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("starting call event hub",
		zap.Int("max_clients", h.config.MaxClients),
		zap.Int("broadcast_buffer", h.config.BroadcastBufferSize),
	)

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case n := <-h.broadcast:
			h.fanOut(n)
		case <-h.done:
			h.shutdown()
			return
		case <-ctx.Done():
			h.shutdown()
			return
		}
	}
}

// Stop shuts the hub down.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish enqueues a notification for broadcast. It never blocks: when the
// broadcast buffer is full the notification is dropped and counted.
func (h *Hub) Publish(n callrouting.Notification) {
	select {
	case h.broadcast <- n:
	default:
		h.droppedLock.Lock()
		h.dropped++
		h.droppedLock.Unlock()
		h.logger.Warn("broadcast buffer full, dropping call event",
			zap.String("type", string(n.Type)),
			zap.String("call_sid", n.CallSID),
		)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsLock.RLock()
	defer h.clientsLock.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of events discarded due to backpressure.
func (h *Hub) Dropped() int64 {
	h.droppedLock.Lock()
	defer h.droppedLock.Unlock()
	return h.dropped
}

func (h *Hub) addClient(client *Client) {
	h.clientsLock.Lock()
	defer h.clientsLock.Unlock()

	if len(h.clients) >= h.config.MaxClients {
		h.logger.Warn("client limit reached, rejecting connection",
			zap.Int("max_clients", h.config.MaxClients))
		client.close()
		return
	}

	h.clients[client.ID] = client
	h.logger.Info("dashboard client connected",
		zap.String("client_id", client.ID.String()),
		zap.Int("active_clients", len(h.clients)),
	)
}

func (h *Hub) removeClient(client *Client) {
	h.clientsLock.Lock()
	defer h.clientsLock.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	client.close()
	h.logger.Info("dashboard client disconnected",
		zap.String("client_id", client.ID.String()),
		zap.Int("active_clients", len(h.clients)),
	)
}

func (h *Hub) fanOut(n callrouting.Notification) {
	h.clientsLock.RLock()
	defer h.clientsLock.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- n:
		default:
			// Client is not draining its buffer; it will be reaped when
			// its write pump notices the closed connection.
			h.logger.Debug("client send buffer full, dropping event",
				zap.String("client_id", client.ID.String()),
				zap.String("type", string(n.Type)),
			)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsLock.Lock()
	defer h.clientsLock.Unlock()

	for id, client := range h.clients {
		client.close()
		delete(h.clients, id)
	}
	h.logger.Info("call event hub stopped")
}
