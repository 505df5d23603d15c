package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"report-service/internal/stats"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	clientBuffer   = 8

	resubscribeDelay = time.Second
)

// SnapshotFunc refetches every report and aggregates it.
type SnapshotFunc func(ctx context.Context) (stats.Dashboard, error)

// Hub pushes a fresh dashboard to every connected client after each change
// event. Each event costs one full refetch, shared by all clients; this is
// the scalability ceiling of the live view. The broker subscription is held
// only while at least one client is connected.
type Hub struct {
	broker     Broker
	snapshot   SnapshotFunc
	log        zerolog.Logger
	register   chan *Client
	unregister chan *Client
	clients    map[*Client]struct{}
	events     <-chan Event
	release    func()
	retry      <-chan time.Time
	done       chan struct{}
}

func NewHub(broker Broker, snapshot SnapshotFunc, log zerolog.Logger) *Hub {
	return &Hub{
		broker:     broker,
		snapshot:   snapshot,
		log:        log.With().Str("component", "hub").Logger(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Run owns the client set and the subscription until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			if h.events == nil {
				h.events, h.release = h.broker.Subscribe(ctx)
				h.retry = nil
			}
			if payload, ok := h.render(ctx); ok {
				h.deliver(client, payload)
			}

		case client := <-h.unregister:
			h.drop(client)

		case _, ok := <-h.events:
			if !ok {
				h.log.Warn().Int("clients", len(h.clients)).Msg("change feed closed")
				h.release()
				h.events, h.release = nil, nil
				if len(h.clients) > 0 {
					h.retry = time.After(resubscribeDelay)
				}
				continue
			}
			h.broadcast(ctx)

		case <-h.retry:
			h.retry = nil
			if h.events != nil || len(h.clients) == 0 {
				continue
			}
			h.events, h.release = h.broker.Subscribe(ctx)
			h.log.Info().Msg("change feed resubscribed")
			// changes made while the feed was down were never announced
			h.broadcast(ctx)
		}
	}
}

// Serve registers conn and pumps it until the socket closes.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	case <-ctx.Done():
		conn.Close()
		return
	}
	go client.writePump()
	client.readPump()
}

func (h *Hub) render(ctx context.Context) ([]byte, bool) {
	dashboard, err := h.snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build dashboard snapshot")
		return nil, false
	}
	payload, err := json.Marshal(dashboard)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode dashboard snapshot")
		return nil, false
	}
	return payload, true
}

func (h *Hub) broadcast(ctx context.Context) {
	payload, ok := h.render(ctx)
	if !ok {
		return
	}
	for client := range h.clients {
		h.deliver(client, payload)
	}
}

func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.log.Warn().Msg("dropping slow dashboard client")
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	if len(h.clients) == 0 && h.release != nil {
		h.release()
		h.events, h.release = nil, nil
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	if h.release != nil {
		h.release()
		h.events, h.release = nil, nil
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("dashboard client closed")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
