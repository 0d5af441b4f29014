package web

import (
	"sync"

	"github.com/gorilla/websocket"

	"murmur.town/relay"
)

// Socket adapts one websocket connection to the relay's channel contract.
// The session's read loop and its pipeline goroutines both write events, so
// writes are serialized behind a mutex; gorilla allows one writer at a time.
type Socket struct {
	conn *websocket.Conn

	mu sync.Mutex
}

func NewSocket(conn *websocket.Conn, maxMessageBytes int64) *Socket {
	if maxMessageBytes > 0 {
		conn.SetReadLimit(maxMessageBytes)
	}
	return &Socket{conn: conn}
}

func (s *Socket) Next() ([]byte, error) {
	_, raw, err := s.conn.ReadMessage()
	return raw, err
}

func (s *Socket) Emit(ev relay.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(ev)
}

func (s *Socket) Close() error {
	return s.conn.Close()
}
