package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/sql-tutor/internal/api/middleware"
	"github.com/Rrens/sql-tutor/internal/api/response"
	"github.com/Rrens/sql-tutor/internal/domain"
	"github.com/Rrens/sql-tutor/internal/service"
)

type AssistHandler struct {
	assistService *service.AssistService
}

func NewAssistHandler(assistService *service.AssistService) *AssistHandler {
	return &AssistHandler{assistService: assistService}
}

// Generate asks the LLM to write SQL for a natural-language question
func (h *AssistHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.assist(w, r, domain.ModeGenerate)
}

// Fix asks the LLM to repair SQL that the in-browser engine rejected
func (h *AssistHandler) Fix(w http.ResponseWriter, r *http.Request) {
	h.assist(w, r, domain.ModeFix)
}

func (h *AssistHandler) assist(w http.ResponseWriter, r *http.Request, mode domain.AssistMode) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req domain.AssistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.assistService.Assist(r.Context(), userID, mode, req)
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("assist call failed")
		response.BadRequest(w, err.Error())
		return
	}

	response.OK(w, resp)
}

// ValidateSQL runs the safety gate on SQL the learner wrote themselves
func (h *AssistHandler) ValidateSQL(w http.ResponseWriter, r *http.Request) {
	var req domain.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.OK(w, h.assistService.ValidateSQL(req.SQL, req.AllowedTables))
}

// ListAttempts returns the caller's recent assist history
func (h *AssistHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	attempts, err := h.assistService.ListAttempts(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "failed to list attempts")
		return
	}

	response.OK(w, attempts)
}
