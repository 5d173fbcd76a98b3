package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finchat/internal/resilience"
	"github.com/sells-group/finchat/pkg/anthropic"
)

func TestAnthropic_Generate(t *testing.T) {
	mc := new(mockAnthropicClient)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 512 &&
			len(req.Messages) == 1 &&
			req.Messages[0].Role == "user" &&
			req.Messages[0].Content == "분류할 질문" &&
			req.Temperature != nil && *req.Temperature == 0
	})).Return(&anthropic.MessageResponse{
		Model:   "claude-haiku-4-5-20251001",
		Content: []anthropic.ContentBlock{{Type: "text", Text: "작업유형: accounting"}},
		Usage:   anthropic.TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
	}, nil)

	g := NewAnthropic(mc, "claude-haiku-4-5-20251001", 512, 0)
	resp, err := g.Generate(context.Background(), Request{Phase: PhaseClassify, Prompt: "분류할 질문"})
	require.NoError(t, err)
	assert.Equal(t, "작업유형: accounting", resp.Text)
	assert.Equal(t, "claude-haiku-4-5-20251001", resp.Model)
	assert.Equal(t, int64(1_000_000), resp.Usage.InputTokens)
	assert.InDelta(t, 4.80, resp.Usage.Cost, 0.001)
	mc.AssertExpectations(t)
}

func TestAnthropic_Generate_Error(t *testing.T) {
	mc := new(mockAnthropicClient)
	cause := errors.New("connection closed")
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, cause)

	g := NewAnthropic(mc, "claude-haiku-4-5-20251001", 512, 0)
	_, err := g.Generate(context.Background(), Request{Phase: PhaseAnswer, Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "llm: anthropic answer")
	assert.False(t, resilience.IsTransient(err))
}
