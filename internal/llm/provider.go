package llm

import (
	"context"

	"github.com/Rrens/sql-tutor/internal/domain"
)

// Request contains the parameters for one assist completion
type Request struct {
	Mode        domain.AssistMode
	Question    string
	SQL         string
	EngineError string
	SchemaDDL   string
}

// Response contains the raw LLM reply. Interpretation of RawText is the
// classifier's job, not the provider's.
type Response struct {
	RawText    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete sends the assist prompt and returns the raw reply
	Complete(ctx context.Context, req Request, model string) (*Response, error)
}
