package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/sql-tutor/internal/domain"
	"github.com/Rrens/sql-tutor/internal/llm"
	"github.com/Rrens/sql-tutor/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AssistService runs the assist pipeline: prompt the LLM, classify its
// reply, gate any extracted SQL, log the attempt.
type AssistService struct {
	llmRouter   *llm.Router
	validator   *security.SQLValidator
	attemptRepo domain.AttemptRepository
}

// NewAssistService creates a new assist service
func NewAssistService(
	llmRouter *llm.Router,
	validator *security.SQLValidator,
	attemptRepo domain.AttemptRepository,
) *AssistService {
	return &AssistService{
		llmRouter:   llmRouter,
		validator:   validator,
		attemptRepo: attemptRepo,
	}
}

// Assist processes one generate or fix request
func (s *AssistService) Assist(ctx context.Context, userID uuid.UUID, mode domain.AssistMode, req domain.AssistRequest) (*domain.AssistResponse, error) {
	requestID := uuid.New().String()
	startTime := time.Now()

	switch mode {
	case domain.ModeGenerate:
		if req.Question == "" {
			return nil, errors.New("question is required")
		}
	case domain.ModeFix:
		if req.SQL == "" {
			return nil, errors.New("sql is required")
		}
	default:
		return nil, fmt.Errorf("unknown assist mode: %s", mode)
	}

	providerName := req.LLMProvider
	if providerName == "" {
		providerName = s.llmRouter.DefaultProvider()
	}

	provider, err := s.llmRouter.GetProvider(providerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM provider: %w", err)
	}

	modelName := req.LLMModel
	if modelName == "" {
		modelName = provider.DefaultModel()
	}

	llmResp, err := provider.Complete(ctx, llm.Request{
		Mode:        mode,
		Question:    req.Question,
		SQL:         req.SQL,
		EngineError: req.EngineError,
		SchemaDDL:   req.SchemaDDL,
	}, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to complete assist request: %w", err)
	}

	outcome := llm.Classify(llmResp.RawText)

	log.Debug().
		Str("request_id", requestID).
		Str("code", string(outcome.Code)).
		Int("sql_len", len(outcome.SQL)).
		Int("tokens_used", llmResp.TokensUsed).
		Msg("classified LLM reply")

	response := &domain.AssistResponse{
		RequestID:   requestID,
		Code:        string(outcome.Code),
		Message:     outcome.Message,
		SQL:         outcome.SQL,
		Explanation: outcome.Explanation,
		Metadata: &domain.AssistMetadata{
			LLMProvider:  providerName,
			LLMModel:     modelName,
			LLMLatencyMs: llmResp.LatencyMs,
			TokensUsed:   llmResp.TokensUsed,
		},
	}

	// The gate fronts execution: SQL leaves the server only after it
	// passes. A non-SUCCESS outcome carries no SQL, so there is nothing
	// to validate.
	var valid *bool
	if outcome.SQL != "" {
		_, err := s.validator.Validate(outcome.SQL, req.AllowedTables)
		ok := err == nil
		valid = &ok
		if err != nil {
			var verr *security.ValidationError
			reason := err.Error()
			if errors.As(err, &verr) {
				reason = verr.Reason
			}
			response.SQL = ""
			response.Validation = &domain.ValidationInfo{OK: false, Reason: reason}
		} else {
			response.Validation = &domain.ValidationInfo{OK: true}
		}
	}

	response.Metadata.ExecutionTimeMs = time.Since(startTime).Milliseconds()

	attempt := &domain.Attempt{
		ID:        uuid.New(),
		UserID:    userID,
		Mode:      mode,
		Question:  req.Question,
		Code:      string(outcome.Code),
		SQL:       outcome.SQL,
		Valid:     valid,
		Provider:  providerName,
		Model:     modelName,
		CreatedAt: startTime,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		// The assist result is still useful without the log entry.
		log.Error().Err(err).Msg("failed to save attempt")
	}

	return response, nil
}

// ValidateSQL runs the safety gate on caller-supplied SQL, without the LLM
func (s *AssistService) ValidateSQL(sql string, allowedTables []string) domain.ValidationInfo {
	if _, err := s.validator.Validate(sql, allowedTables); err != nil {
		var verr *security.ValidationError
		reason := err.Error()
		if errors.As(err, &verr) {
			reason = verr.Reason
		}
		return domain.ValidationInfo{OK: false, Reason: reason}
	}
	return domain.ValidationInfo{OK: true}
}

// ListAttempts returns the most recent attempts for a user
func (s *AssistService) ListAttempts(ctx context.Context, userID uuid.UUID) ([]domain.Attempt, error) {
	// 50 attempts limit for now
	return s.attemptRepo.ListByUser(ctx, userID, 50)
}
