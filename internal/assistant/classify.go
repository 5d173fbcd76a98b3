package assistant

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finchat/internal/llm"
	"github.com/sells-group/finchat/internal/metrics"
	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/prompt"
)

var (
	// classificationLine matches the "작업유형:" key, tolerating markdown
	// emphasis around it and a full-width colon, and captures the rest of the line.
	classificationLine = regexp.MustCompile("작업유형[*_` \t]*[:：]([^\n]*)")
	// classificationLabel is a single label with optional decoration and
	// nothing else on the line.
	classificationLabel = regexp.MustCompile("^[*_`\"' \t]*([A-Za-z_]+)[*_`\"' \t.\r]*$")
)

// ParseClassification reads the category from classifier output. The first
// 작업유형 line wins.
func ParseClassification(output string) (model.Category, error) {
	m := classificationLine.FindStringSubmatch(output)
	if m == nil {
		return "", eris.Wrapf(ErrMalformedClassification, "no 작업유형 line in %q", truncate(output, 80))
	}
	label := classificationLabel.FindStringSubmatch(m[1])
	if label == nil {
		return "", eris.Wrapf(ErrMalformedClassification, "value %q", strings.TrimSpace(m[1]))
	}
	cat, err := model.ParseCategory(label[1])
	if err != nil {
		return "", eris.Wrapf(ErrMalformedClassification, "label %q", label[1])
	}
	return cat, nil
}

// Classify assigns question to one of the five categories with a single
// generation call.
func (a *Assistant) Classify(ctx context.Context, question string) (model.Category, error) {
	cat, _, err := a.classify(ctx, question)
	return cat, err
}

func (a *Assistant) classify(ctx context.Context, question string) (model.Category, model.TokenUsage, error) {
	var usage model.TokenUsage

	q, err := normalize(question)
	if err != nil {
		return "", usage, err
	}

	filled, err := a.catalog.Classification().Fill(prompt.Fields{"question": q})
	if err != nil {
		return "", usage, err
	}

	resp, err := a.gen.Generate(ctx, llm.Request{Phase: llm.PhaseClassify, Prompt: filled})
	if err != nil {
		return "", usage, eris.Wrap(err, "assistant: classify")
	}
	usage = resp.Usage

	cat, err := ParseClassification(resp.Text)
	if err != nil {
		metrics.MalformedOutputs.WithLabelValues(string(llm.PhaseClassify)).Inc()
		zap.L().Warn("unparseable classification", zap.String("output", truncate(resp.Text, 200)), zap.Error(err))
		return "", usage, err
	}

	metrics.Classifications.WithLabelValues(string(cat)).Inc()
	zap.L().Debug("question classified", zap.String("category", string(cat)))
	return cat, usage, nil
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}
