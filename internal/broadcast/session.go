package broadcast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fieldcheck/pkg/domain"
)

const (
	// writeWait bounds a single frame write so one stuck client cannot wedge
	// its writer goroutine forever.
	writeWait = 10 * time.Second

	// sendBuffer is the per-session outbound queue. Publish order is FIFO
	// within it; when it fills, further events for that session are dropped.
	sendBuffer = 64
)

// Session is one live channel: a single browser tab's WebSocket connection
// plus its outbound queue. A single writer goroutine drains the queue, which
// keeps frame delivery FIFO per session without holding the hub's lock during
// network writes.
type Session struct {
	id     domain.ChannelID
	conn   *websocket.Conn
	logger *slog.Logger

	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewSession(id domain.ChannelID, conn *websocket.Conn, logger *slog.Logger) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		logger: logger,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

func (s *Session) ID() domain.ChannelID { return s.id }

// TrySend enqueues a frame without blocking. Reports false when the session
// is closed or its buffer is full; the caller treats both as delivery loss,
// never as an error.
func (s *Session) TrySend(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// Close makes the session refuse further sends and stops its writer.
// Idempotent; safe from any goroutine.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
}

// writePump drains the outbound queue onto the socket and pings on a ticker.
// The read side enforces the pong deadline; a dead peer fails the ping write
// or the read deadline, either of which tears the session down.
func (s *Session) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("channel write failed", "channel_id", s.id, "error", err)
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		}
	}
}

// readPump consumes inbound frames until the peer goes away. Clients are not
// expected to send anything meaningful; the loop exists to process pongs and
// observe the close. Returns when the connection dies.
func (s *Session) readPump(pongWait time.Duration) {
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
