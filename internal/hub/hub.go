package hub

import (
	"sync"

	"go.uber.org/zap"
)

// Client is one subscriber's outbox. The transport layer drains Recv and
// stops when Done is closed.
type Client struct {
	ID string

	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClient(id string, buffer int) *Client {
	return &Client{
		ID:   id,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// TrySend queues payload without blocking; false means the outbox is full.
func (c *Client) TrySend(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) Recv() <-chan []byte   { return c.send }
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// Hub fans server events out to every client subscribed to a room.
type Hub struct {
	log *zap.Logger

	mu    sync.Mutex
	rooms map[string]map[*Client]bool
}

func New(log *zap.Logger) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Register(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
}

func (h *Hub) Unregister(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(roomID, c)
}

// Broadcast delivers payload to every client in the room. A client whose
// outbox is full is dropped rather than allowed to stall the others.
func (h *Hub) Broadcast(roomID string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[roomID] {
		if !c.TrySend(payload) {
			h.log.Warn("dropping slow client",
				zap.String("room_id", roomID),
				zap.String("client_id", c.ID))
			h.removeLocked(roomID, c)
			c.Close()
		}
	}
}

// ClientCount reports how many clients are subscribed to a room.
func (h *Hub) ClientCount(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

func (h *Hub) removeLocked(roomID string, c *Client) {
	clients := h.rooms[roomID]
	if clients == nil {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
}
