package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finchat/internal/llm"
	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/prompt"
)

// mockGenerator is a testify mock for llm.Generator.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// phase matches requests for the given generation phase.
func phase(p llm.Phase) any {
	return mock.MatchedBy(func(req llm.Request) bool { return req.Phase == p })
}

func reply(text string, in, out int64) *llm.Response {
	return &llm.Response{
		Text:  text,
		Model: "test-model",
		Usage: model.TokenUsage{InputTokens: in, OutputTokens: out, Cost: 0.01},
	}
}

func newTestAssistant(t *testing.T, gen llm.Generator, opts ...Option) *Assistant {
	t.Helper()
	catalog, err := prompt.Default()
	require.NoError(t, err)
	opts = append([]Option{WithDefaultYears([]int{2023, 2024})}, opts...)
	return New(gen, catalog, opts...)
}
