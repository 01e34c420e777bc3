package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow-api/internal/service"
	"github.com/BuzzLyutic/taskflow-api/pkg/respond"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
	logger  *zap.Logger
}

func NewAnalyticsHandler(srv *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.Summarize(r.Context(), UserID(r.Context()))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]any{"analytics": analytics})
}
