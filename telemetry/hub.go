// Package telemetry streams simulation snapshots to external renderers over
// websocket, as JSON frames. The stream is read-only: clients cannot act on
// the simulation.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/akmonengine/tumbler"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// sendBuffer is the number of frames queued per client before frames are dropped
	sendBuffer   = 8
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// WallFrame is the world-space outline of one wall
type WallFrame struct {
	Index    int          `json:"index"`
	Name     string       `json:"name"`
	Vertices []mgl64.Vec3 `json:"vertices"`
	Normal   mgl64.Vec3   `json:"normal"`
}

// Frame is the JSON document sent for every broadcast snapshot
type Frame struct {
	tumbler.Snapshot
	Walls   []WallFrame `json:"walls"`
	Speed   float64     `json:"speed"`
	Heading float64     `json:"heading"`
	SpinDir string      `json:"spin_direction"`
}

// NewFrame flattens a snapshot for the wire
func NewFrame(s tumbler.Snapshot) Frame {
	walls := make([]WallFrame, 0, len(s.Walls))
	for _, w := range s.Walls {
		walls = append(walls, WallFrame{
			Index:    w.Index,
			Name:     w.Name,
			Vertices: w.Vertices,
			Normal:   w.Normal,
		})
	}

	return Frame{
		Snapshot: s,
		Walls:    walls,
		Speed:    s.Speed(),
		Heading:  s.Heading(),
		SpinDir:  s.SpinLabel(),
	}
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans frames out to every connected client. A slow client loses frames
// instead of slowing the simulation down.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]*client
	closed  bool
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[uuid.UUID]*client),
	}
}

// ServeHTTP upgrades the request and registers the client until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	h.logger.Info("telemetry client connected", zap.Stringer("client", c.id), zap.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	if ok {
		c.close()
		h.logger.Info("telemetry client disconnected", zap.Stringer("client", c.id))
	}
}

// readLoop only watches for the client going away; incoming messages are ignored
func (h *Hub) readLoop(c *client) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("telemetry write failed", zap.Stringer("client", c.id), zap.Error(err))
			h.unregister(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// Broadcast encodes the snapshot once and queues it for every client.
// It never blocks.
func (h *Hub) Broadcast(s tumbler.Snapshot) error {
	msg, err := json.Marshal(NewFrame(s))
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("telemetry frame dropped", zap.Stringer("client", c.id), zap.Uint64("tick", s.Tick))
		}
	}
	return nil
}

// Clients is the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[uuid.UUID]*client)
	h.closed = true
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
