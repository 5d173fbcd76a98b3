package prompt

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finchat/internal/model"
)

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func fullFields(question string) Fields {
	return Fields{
		"question":           question,
		"context":            "재고자산 기준서 발췌",
		"acct":               "회계 기준서 발췌",
		"biz":                "사업보고서 발췌",
		"fin":                "재무제표 발췌",
		"financial_data":     "2024 매출액 100",
		"resolved_corp_name": "카카오",
	}
}

func TestFill_RoundTrip(t *testing.T) {
	c := loadDefault(t)
	question := "카카오의 2023년 재무제표를 보고 앞으로의 전망을 알려줘"

	for _, cat := range model.AllCategories() {
		for _, tier := range model.AllTiers() {
			tmpl, err := c.Select(cat, tier)
			require.NoError(t, err)

			out, err := tmpl.Fill(fullFields(question))
			require.NoError(t, err, tmpl.ID)
			assert.Contains(t, out, question, tmpl.ID)
			assert.Empty(t, Placeholders(out), tmpl.ID)
		}
	}
}

func TestFill_MissingPlaceholder(t *testing.T) {
	c := loadDefault(t)
	tmpl, err := c.Select(model.CategoryHybrid, model.TierIntermediate)
	require.NoError(t, err)

	_, err = tmpl.Fill(Fields{"question": "q", "acct": "a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPlaceholder))
	assert.Contains(t, err.Error(), "biz")
	assert.Contains(t, err.Error(), "fin")
}

func TestFill_EmptyValueIsSupplied(t *testing.T) {
	tmpl := &Template{ID: "t", Fields: []string{"question", "context"}, Body: "[{context}] {question}"}

	out, err := tmpl.Fill(Fields{"question": "q", "context": ""})
	require.NoError(t, err)
	assert.Equal(t, "[] q", out)
}

func TestFill_SinglePass(t *testing.T) {
	tmpl := &Template{ID: "t", Fields: []string{"question", "context"}, Body: "{context}|{question}"}

	out, err := tmpl.Fill(Fields{"question": "{context}", "context": "{question}"})
	require.NoError(t, err)
	assert.Equal(t, "{question}|{context}", out)
}

func TestFill_IgnoresUndeclared(t *testing.T) {
	tmpl := &Template{ID: "t", Fields: []string{"question"}, Body: "{question}"}

	out, err := tmpl.Fill(Fields{"question": "q", "biz": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "q", out)
}

func TestFill_BusinessScenario(t *testing.T) {
	c := loadDefault(t)
	tmpl, err := c.Select(model.CategoryBusiness, model.TierIntermediate)
	require.NoError(t, err)

	question := "카카오는 요즘 사업 상황이 어때?"
	out, err := tmpl.Fill(Fields{"biz": "<report excerpt>", "question": question})
	require.NoError(t, err)
	assert.Contains(t, out, "안녕하세요! 요청하신 내용을 사업보고서 중심으로 분석해 봤어요.")
	assert.Contains(t, out, "<report excerpt>")
	assert.True(t, strings.HasSuffix(out, "질문: "+question))
}

func TestFill_MaterialAppearsOnce(t *testing.T) {
	c := loadDefault(t)
	materials := []string{"context", "acct", "biz", "fin", "financial_data"}

	for _, cat := range model.AnswerCategories() {
		for _, tier := range model.AllTiers() {
			tmpl, err := c.Select(cat, tier)
			require.NoError(t, err)

			fields := Fields{"question": "q", "resolved_corp_name": "카카오"}
			for _, m := range materials {
				fields[m] = "<<" + m + ">>"
			}
			out, err := tmpl.Fill(fields)
			require.NoError(t, err)

			for _, m := range materials {
				want := 0
				if slices.Contains(tmpl.Fields, m) {
					want = 1
				}
				assert.Equal(t, want, strings.Count(out, "<<"+m+">>"), "%s: %s", tmpl.ID, m)
			}
		}
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"a", "b_c"}, Placeholders("{a} {b_c} {a} {Upper} { spaced }"))
	assert.Empty(t, Placeholders("no markers"))
}

func TestFields_Merge(t *testing.T) {
	base := Fields{"a": "1", "b": "2"}
	merged := base.Merge(Fields{"b": "3", "c": "4"})
	assert.Equal(t, Fields{"a": "1", "b": "3", "c": "4"}, merged)
	assert.Equal(t, "2", base["b"])
}
