package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/resilience"
	"github.com/sells-group/finchat/pkg/anthropic"
)

// Anthropic generates text with the Anthropic Messages API.
type Anthropic struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropic creates an Anthropic generator.
func NewAnthropic(client anthropic.Client, modelID string, maxTokens int64, temperature float64) *Anthropic {
	return &Anthropic{
		client:      client,
		model:       modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Generate sends the prompt as a single user message.
func (a *Anthropic) Generate(ctx context.Context, req Request) (*Response, error) {
	temp := a.temperature
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Messages:    []anthropic.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, resilience.FromStatus(
			eris.Wrapf(err, "llm: anthropic %s", req.Phase),
			anthropic.StatusCode(err),
		)
	}

	resp.Usage.LogCost(resp.Model, string(req.Phase))
	return &Response{
		Text:  resp.Text(),
		Model: resp.Model,
		Usage: model.TokenUsage{
			InputTokens:  resp.Usage.InputTokens + resp.Usage.CacheCreationInputTokens + resp.Usage.CacheReadInputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			Cost:         resp.Usage.EstimateCost(resp.Model),
		},
	}, nil
}
