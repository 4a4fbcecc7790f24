package handler

import (
	"net/http"

	"github.com/Rrens/sql-tutor/internal/api/response"
	"github.com/Rrens/sql-tutor/internal/llm"
	"github.com/Rrens/sql-tutor/internal/repository/postgres"
)

type HealthHandler struct {
	db        *postgres.DB
	llmRouter *llm.Router
}

func NewHealthHandler(db *postgres.DB, llmRouter *llm.Router) *HealthHandler {
	return &HealthHandler{db: db, llmRouter: llmRouter}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "healthy"})
}

// ReadyCheck verifies the database is reachable before reporting ready.
func (h *HealthHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		response.Error(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	response.OK(w, map[string]string{"status": "ready"})
}

func (h *HealthHandler) ListLLMProviders(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.llmRouter.GetProvidersInfo())
}
