package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Session - одно вебсокет-подключение аутентифицированного пользователя
type Session struct {
	ID      string
	OwnerID string
	conn    *websocket.Conn
	send    chan []byte
}

func NewSession(ownerID string, conn *websocket.Conn) *Session {
	return &Session{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		conn:    conn,
		send:    make(chan []byte, 64),
	}
}

// WritePump пишет события из канала send в сокет. Закрытие канала
// (хаб снял сессию с учета) завершает цикл и соединение.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump ничего не ожидает от клиента, только следит за закрытием
func (s *Session) ReadPump(hub *Hub) {
	defer func() {
		hub.Unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
