package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finchat/internal/llm"
	"github.com/sells-group/finchat/internal/model"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    model.Category
		wantErr bool
	}{
		{name: "plain", output: "작업유형: finance", want: model.CategoryFinance},
		{name: "with explanation", output: "분석 결과\n작업유형: accounting\n이유: 회계 기준 질문", want: model.CategoryAccounting},
		{name: "markdown emphasis", output: "**작업유형**: **Hybrid**", want: model.CategoryHybrid},
		{name: "backticks", output: "작업유형: `business`", want: model.CategoryBusiness},
		{name: "full-width colon", output: "작업유형：else", want: model.CategoryElse},
		{name: "first line wins", output: "작업유형: business\n작업유형: finance", want: model.CategoryBusiness},
		{name: "unknown label", output: "작업유형: unknown_x", wantErr: true},
		{name: "label prefix only", output: "작업유형: finance_x", wantErr: true},
		{name: "korean label", output: "작업유형: 재무", wantErr: true},
		{name: "trailing period", output: "작업유형: finance.", want: model.CategoryFinance},
		{name: "crlf", output: "작업유형: business\r\n이유: 시장 분석", want: model.CategoryBusiness},
		{name: "hyphenated label", output: "작업유형: finance-related", wantErr: true},
		{name: "two labels with slash", output: "작업유형: finance/business", wantErr: true},
		{name: "two labels with comma", output: "작업유형: accounting, finance", wantErr: true},
		{name: "label with digits", output: "작업유형: else123", wantErr: true},
		{name: "malformed first line wins", output: "작업유형: finance-related\n작업유형: finance", wantErr: true},
		{name: "empty value", output: "작업유형:\nfinance", wantErr: true},
		{name: "missing line", output: "finance", wantErr: true},
		{name: "empty", output: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClassification(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedClassification)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	mg := new(mockGenerator)
	question := "삼성전자의 2023년 매출액은 얼마인가요?"
	mg.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Phase == llm.PhaseClassify &&
			strings.Contains(req.Prompt, question) &&
			!strings.Contains(req.Prompt, "{question}")
	})).Return(reply("작업유형: finance", 10, 2), nil)

	a := newTestAssistant(t, mg)
	cat, err := a.Classify(context.Background(), "  "+question+"\n")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFinance, cat)
	mg.AssertExpectations(t)
}

func TestClassify_NormalizesDecomposedHangul(t *testing.T) {
	mg := new(mockGenerator)
	mg.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return strings.Contains(req.Prompt, "회계")
	})).Return(reply("작업유형: accounting", 1, 1), nil)

	a := newTestAssistant(t, mg)
	cat, err := a.Classify(context.Background(), "\u1112\u116c\u1100\u1168 기준")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryAccounting, cat)
}

func TestClassify_Malformed(t *testing.T) {
	mg := new(mockGenerator)
	mg.On("Generate", mock.Anything, phase(llm.PhaseClassify)).Return(reply("작업유형: unknown_x", 1, 1), nil)

	a := newTestAssistant(t, mg)
	_, err := a.Classify(context.Background(), "질문")
	assert.ErrorIs(t, err, ErrMalformedClassification)
}

func TestClassify_EmptyQuestion(t *testing.T) {
	mg := new(mockGenerator)
	a := newTestAssistant(t, mg)

	_, err := a.Classify(context.Background(), " \t\n")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	mg.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestClassify_UpstreamError(t *testing.T) {
	mg := new(mockGenerator)
	cause := errors.New("provider unavailable")
	mg.On("Generate", mock.Anything, mock.Anything).Return(nil, cause)

	a := newTestAssistant(t, mg)
	_, err := a.Classify(context.Background(), "질문")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMalformedClassification)
}
