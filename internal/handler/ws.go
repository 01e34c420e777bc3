package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow-api/internal/auth"
	"github.com/BuzzLyutic/taskflow-api/internal/ws"
	"github.com/BuzzLyutic/taskflow-api/pkg/respond"
)

type WSHandler struct {
	hub      *ws.Hub
	tokens   *auth.JWTManager
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *ws.Hub, tokens *auth.JWTManager, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Браузерный клиент ходит с другого origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve апгрейдит соединение после проверки токена. Браузер не умеет
// ставить заголовки на вебсокет, поэтому токен приходит в query.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respond.Error(w, r, http.StatusUnauthorized, "Please authenticate")
		return
	}

	userID, err := h.tokens.Verify(token)
	if err != nil {
		respond.Error(w, r, http.StatusUnauthorized, "Please authenticate")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	session := ws.NewSession(userID, conn)
	h.hub.Register(session)

	go session.WritePump()
	go session.ReadPump(h.hub)
}
