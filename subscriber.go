package simgame

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Subscriber is a websocket connection attached to a joined client. Writes
// are serialized so the broadcast loop and the read loop can share it.
type Subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex

	lastCommandSeq atomic.Uint64
}

func newSubscriber(conn *websocket.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// WriteMessage sends one frame with the hub write deadline applied.
func (s *Subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

// LastCommandSeq is the highest command sequence acknowledged on this
// connection.
func (s *Subscriber) LastCommandSeq() uint64 {
	return s.lastCommandSeq.Load()
}

func (s *Subscriber) StoreLastCommandSeq(seq uint64) {
	s.lastCommandSeq.Store(seq)
}

func (s *Subscriber) close() {
	if s == nil || s.conn == nil {
		return
	}
	s.conn.Close()
}
