// Package llm adapts text-generation providers to a single Generator
// interface and wraps them with rate limiting, retries and a circuit breaker.
package llm

import (
	"context"

	"github.com/sells-group/finchat/internal/model"
)

// Phase names the step a generation call belongs to.
type Phase string

const (
	PhaseClassify Phase = "classify"
	PhaseExtract  Phase = "extract"
	PhaseAnswer   Phase = "answer"
)

// Request is a single-turn generation request. Prompt is a fully filled
// template.
type Request struct {
	Phase  Phase
	Prompt string
}

// Response is the generated text with its accounting.
type Response struct {
	Text  string
	Model string
	Usage model.TokenUsage
}

// Generator produces text for a filled prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (*Response, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
