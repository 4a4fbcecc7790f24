package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AssistMode selects which prompt the LLM receives
type AssistMode string

const (
	ModeGenerate AssistMode = "generate"
	ModeFix      AssistMode = "fix"
)

// AssistRequest represents one AI-assist call from the browser client.
// The client owns the database (it runs in-tab), so it sends its current
// schema DDL and, when the lesson restricts table access, the allow-list.
type AssistRequest struct {
	Question      string   `json:"question" validate:"omitempty,max=2000"`
	SQL           string   `json:"sql" validate:"omitempty,max=20000"`
	EngineError   string   `json:"engine_error" validate:"omitempty,max=2000"`
	SchemaDDL     string   `json:"schema_ddl" validate:"required,max=50000"`
	AllowedTables []string `json:"allowed_tables" validate:"omitempty,max=100,dive,max=128"`
	LLMProvider   string   `json:"llm_provider" validate:"omitempty,oneof=gemini openai ollama"`
	LLMModel      string   `json:"llm_model,omitempty"`
}

// ValidateRequest runs the safety gate on client-authored SQL
type ValidateRequest struct {
	SQL           string   `json:"sql" validate:"required,max=20000"`
	AllowedTables []string `json:"allowed_tables" validate:"omitempty,max=100,dive,max=128"`
}

// ValidationInfo reports the safety-gate verdict for the returned SQL
type ValidationInfo struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// AssistResponse is the structured outcome handed back to the client
type AssistResponse struct {
	RequestID   string          `json:"request_id"`
	Code        string          `json:"code"`
	Message     string          `json:"message"`
	SQL         string          `json:"sql,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
	Validation  *ValidationInfo `json:"validation,omitempty"`
	Metadata    *AssistMetadata `json:"metadata"`
}

// AssistMetadata contains assist call metadata
type AssistMetadata struct {
	LLMProvider     string `json:"llm_provider"`
	LLMModel        string `json:"llm_model"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	LLMLatencyMs    int64  `json:"llm_latency_ms"`
	TokensUsed      int    `json:"tokens_used"`
}

// Attempt is one logged assist call
type Attempt struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Mode      AssistMode `json:"mode"`
	Question  string     `json:"question,omitempty"`
	Code      string     `json:"code"`
	SQL       string     `json:"sql,omitempty"`
	Valid     *bool      `json:"valid,omitempty"`
	Provider  string     `json:"provider"`
	Model     string     `json:"model"`
	CreatedAt time.Time  `json:"created_at"`
}

// AttemptRepository defines attempt log storage
type AttemptRepository interface {
	Create(ctx context.Context, attempt *Attempt) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Attempt, error)
}

// UserRepository defines user storage
type UserRepository interface {
	UpsertByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
