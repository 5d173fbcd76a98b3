package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finchat/internal/llm"
)

func TestParseExtraction(t *testing.T) {
	defaults := []int{2023, 2024}
	tests := []struct {
		name        string
		output      string
		wantCompany string
		wantYears   []int
	}{
		{"company and years", "회사: 삼성전자  \n연도: 2022, 2023, 2024", "삼성전자", []int{2022, 2023, 2024}},
		{"years with suffix", "회사: LG전자\n연도: 2021년, 2020년", "LG전자", []int{2020, 2021}},
		{"markdown labels", "**회사**: **SK하이닉스**\n**연도**: 2023", "SK하이닉스", []int{2023}},
		{"bullets", "- 회사: 현대자동차\n- 연도: 2024, 2024", "현대자동차", []int{2024}},
		{"placeholder company", "회사: <회사명>\n연도: <연도(4자리 숫자)>", "", defaults},
		{"none company", "회사: 없음\n연도: 2022", "", []int{2022}},
		{"no year digits", "회사: 카카오\n연도: 없음", "카카오", defaults},
		{"five digit number ignored", "회사: 네이버\n연도: 20231", "네이버", defaults},
		{"full-width colon", "회사：삼성SDI\n연도：2023", "삼성SDI", []int{2023}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExtraction(tt.output, defaults)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCompany, got.Company)
			assert.Equal(t, tt.wantYears, got.Years)
		})
	}
}

func TestParseExtraction_DefaultsAreCopied(t *testing.T) {
	defaults := []int{2023, 2024}
	got, err := ParseExtraction("회사: 삼성전자\n연도: -", defaults)
	require.NoError(t, err)
	got.Years[0] = 1999
	assert.Equal(t, []int{2023, 2024}, defaults)
}

func TestParseExtraction_Malformed(t *testing.T) {
	for _, output := range []string{
		"",
		"삼성전자 2023",
		"회사: 삼성전자",
		"연도: 2023",
	} {
		_, err := ParseExtraction(output, []int{2024})
		assert.ErrorIs(t, err, ErrMalformedExtraction, output)
	}
}

func TestExtract_NoYearUsesDefaults(t *testing.T) {
	mg := new(mockGenerator)
	mg.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Phase == llm.PhaseExtract &&
			strings.Contains(req.Prompt, "2023, 2024") &&
			strings.Contains(req.Prompt, "삼성전자 매출 알려줘")
	})).Return(reply("회사: 삼성전자\n연도: 2023, 2024", 5, 5), nil)

	a := newTestAssistant(t, mg)
	entity, err := a.Extract(context.Background(), "삼성전자 매출 알려줘")
	require.NoError(t, err)
	assert.Equal(t, "삼성전자", entity.Company)
	assert.Equal(t, []int{2023, 2024}, entity.Years)
	assert.True(t, entity.Resolved())
	mg.AssertExpectations(t)
}

func TestExtract_Malformed(t *testing.T) {
	mg := new(mockGenerator)
	mg.On("Generate", mock.Anything, phase(llm.PhaseExtract)).Return(reply("삼성전자입니다", 1, 1), nil)

	a := newTestAssistant(t, mg)
	_, err := a.Extract(context.Background(), "삼성전자 매출")
	assert.ErrorIs(t, err, ErrMalformedExtraction)
}

func TestWithDefaultYears_IgnoresInvalid(t *testing.T) {
	a := newTestAssistant(t, new(mockGenerator), WithDefaultYears([]int{12}))
	assert.Equal(t, []int{2023, 2024}, a.DefaultYears())
}
