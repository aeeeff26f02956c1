package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/chainreaction/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	sendBufferSize = 64
)

// session is one websocket connection watching a game. seat is nil for spectators.
type session struct {
	conn      *websocket.Conn
	gameID    model.GameID
	seat      *model.Seat
	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newSession(conn *websocket.Conn, gameID model.GameID, seat *model.Seat) *session {
	return &session{
		conn:   conn,
		gameID: gameID,
		seat:   seat,
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
}

func (s *session) playerID() model.PlayerID {
	if s.seat == nil {
		return model.NoPlayer
	}
	return s.seat.PlayerID
}

// enqueue queues a frame without blocking; it reports false if the buffer is full
func (s *session) enqueue(data []byte) bool {
	select {
	case <-s.closed:
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

// close stops the write pump, which then closes the connection
func (s *session) close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// writePump owns all writes to the connection
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.close()
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}

		case <-s.closed:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
