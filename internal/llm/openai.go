package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/resilience"
	"github.com/sells-group/finchat/pkg/openai"
)

// OpenAI generates text with the OpenAI Chat Completions API.
type OpenAI struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAI creates an OpenAI generator.
func NewOpenAI(client openai.Client, modelID string, maxTokens int, temperature float64) *OpenAI {
	return &OpenAI{
		client:      client,
		model:       modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Generate sends the prompt as a single user message.
func (o *OpenAI) Generate(ctx context.Context, req Request) (*Response, error) {
	temp := o.temperature
	maxTokens := o.maxTokens
	resp, err := o.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    []openai.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, resilience.FromStatus(
			eris.Wrapf(err, "llm: openai %s", req.Phase),
			openai.StatusCode(err),
		)
	}

	modelID := resp.Model
	if modelID == "" {
		modelID = o.model
	}
	cost := resp.Usage.EstimateCost(modelID)
	zap.L().Info("cost attribution",
		zap.String("model", modelID),
		zap.String("phase", string(req.Phase)),
		zap.Int("input_tokens", resp.Usage.PromptTokens),
		zap.Int("output_tokens", resp.Usage.CompletionTokens),
		zap.Float64("estimated_cost_usd", cost),
	)

	return &Response{
		Text:  resp.Text(),
		Model: modelID,
		Usage: model.TokenUsage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
			Cost:         cost,
		},
	}, nil
}
