package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

const healthTimeout = 2 * time.Second

// Health — liveness-проверка с пингом базы.
//
// Сервер отвечает 200 пока жив процесс; недоступная база видна в поле db.
//
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200 {object} sharedModels.HealthResponse
// @Router       /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := sharedModels.HealthResponse{Status: "ok", DB: "up"}

	if h.Svc != nil && h.Svc.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := h.Svc.Health.Ping(ctx); err != nil {
			h.Log.Warn("database ping failed", zap.Error(err))
			resp.DB = "down"
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}
