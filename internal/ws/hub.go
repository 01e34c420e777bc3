package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow-api/internal/model"
)

type outbound struct {
	ownerID string
	data    []byte
}

// Hub - реестр подключенных сессий, сгруппированных по владельцу.
// Событие доставляется только сессиям своего владельца, чужие
// пользователи чужих событий не видят.
//
// Картами владеет только цикл run, весь доступ идет через каналы.
type Hub struct {
	sessions   map[string]map[*Session]bool // owner id -> сессии
	register   chan *Session
	unregister chan *Session
	publish    chan outbound
	logger     *zap.Logger
	wg         sync.WaitGroup
	stop       chan struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Session]bool),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		publish:    make(chan outbound, 256),
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

func (h *Hub) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.run(ctx)
}

func (h *Hub) Stop() {
	close(h.stop)
	h.wg.Wait()
}

func (h *Hub) Register(s *Session) {
	select {
	case h.register <- s:
	case <-h.stop:
	}
}

func (h *Hub) Unregister(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.stop:
	}
}

// Publish рассылает событие всем сессиям владельца. Никогда не блокирует
// и не возвращает ошибку: сломавшаяся рассылка не должна валить мутацию.
func (h *Hub) Publish(ownerID string, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	select {
	case h.publish <- outbound{ownerID: ownerID, data: data}:
	default:
		h.logger.Warn("publish queue full, event dropped", zap.String("event", event.Name))
	}
}

func (h *Hub) run(ctx context.Context) {
	defer h.wg.Done()

	for {
		select {
		case <-h.stop:
			h.closeAll()
			return
		case <-ctx.Done():
			h.closeAll()
			return
		case s := <-h.register:
			if h.sessions[s.OwnerID] == nil {
				h.sessions[s.OwnerID] = make(map[*Session]bool)
			}
			h.sessions[s.OwnerID][s] = true
			h.logger.Info("session registered", zap.String("session", s.ID), zap.String("owner", s.OwnerID))
		case s := <-h.unregister:
			if h.sessions[s.OwnerID][s] {
				delete(h.sessions[s.OwnerID], s)
				if len(h.sessions[s.OwnerID]) == 0 {
					delete(h.sessions, s.OwnerID)
				}
				close(s.send)
				h.logger.Info("session unregistered", zap.String("session", s.ID))
			}
		case msg := <-h.publish:
			for s := range h.sessions[msg.ownerID] {
				select {
				case s.send <- msg.data:
				default:
					// Медленная сессия выбывает, доставка без гарантий
					delete(h.sessions[msg.ownerID], s)
					close(s.send)
					h.logger.Warn("session too slow, dropped", zap.String("session", s.ID))
				}
			}
		}
	}
}

func (h *Hub) closeAll() {
	for owner, sessions := range h.sessions {
		for s := range sessions {
			close(s.send)
		}
		delete(h.sessions, owner)
	}
}
