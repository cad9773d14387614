package wshub

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

// Conn is a write-serialized websocket connection.
type Conn struct {
	conn *websocket.Conn
	id   uuid.UUID
	mu   sync.Mutex
}

func NewConn(id uuid.UUID, conn *websocket.Conn) *Conn {
	return &Conn{
		conn: conn,
		id:   id,
	}
}

func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Send writes msg as JSON. gorilla/websocket permits only one concurrent
// writer, hence the mutex.
func (c *Conn) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
