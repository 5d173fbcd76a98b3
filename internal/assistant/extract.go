package assistant

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finchat/internal/llm"
	"github.com/sells-group/finchat/internal/metrics"
	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/prompt"
)

var (
	companyLine = regexp.MustCompile(`(?m)^[ \t>*_-]*회사[*_ \t]*[:：][ \t]*(.*)$`)
	yearLine    = regexp.MustCompile(`(?m)^[ \t>*_-]*연도[*_ \t]*[:：][ \t]*(.*)$`)
	yearPattern = regexp.MustCompile(`\b[0-9]{4}\b`)
)

// unresolvedCompany holds values the extractor emits when no company is named.
var unresolvedCompany = map[string]bool{
	"":      true,
	"-":     true,
	"없음":    true,
	"해당 없음": true,
	"해당없음":  true,
	"미상":    true,
	"n/a":   true,
	"na":    true,
	"none":  true,
	"null":  true,
}

// ParseExtraction reads the company and years from extractor output. When
// the year line holds no four-digit year, defaults is returned as is.
func ParseExtraction(output string, defaults []int) (*model.ExtractedEntity, error) {
	cm := companyLine.FindStringSubmatch(output)
	ym := yearLine.FindStringSubmatch(output)
	switch {
	case cm == nil && ym == nil:
		return nil, eris.Wrapf(ErrMalformedExtraction, "no 회사 or 연도 line in %q", truncate(output, 80))
	case cm == nil:
		return nil, eris.Wrap(ErrMalformedExtraction, "no 회사 line")
	case ym == nil:
		return nil, eris.Wrap(ErrMalformedExtraction, "no 연도 line")
	}

	var years []int
	for _, s := range yearPattern.FindAllString(ym[1], -1) {
		y, _ := strconv.Atoi(s)
		years = append(years, y)
	}
	years = model.NormalizeYears(years)
	if len(years) == 0 {
		years = append([]int(nil), defaults...)
	}

	return &model.ExtractedEntity{
		Company: cleanCompany(cm[1]),
		Years:   years,
	}, nil
}

func cleanCompany(raw string) string {
	name := strings.Trim(strings.TrimSpace(raw), "*_`\"'")
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">") {
		return ""
	}
	if unresolvedCompany[strings.ToLower(name)] {
		return ""
	}
	return name
}

// Extract finds the company and years question refers to with a single
// generation call.
func (a *Assistant) Extract(ctx context.Context, question string) (*model.ExtractedEntity, error) {
	entity, _, err := a.extract(ctx, question)
	return entity, err
}

func (a *Assistant) extract(ctx context.Context, question string) (*model.ExtractedEntity, model.TokenUsage, error) {
	var usage model.TokenUsage

	q, err := normalize(question)
	if err != nil {
		return nil, usage, err
	}

	filled, err := a.catalog.Extraction().Fill(prompt.Fields{
		"question":      q,
		"default_years": formatYears(a.defaultYears),
	})
	if err != nil {
		return nil, usage, err
	}

	resp, err := a.gen.Generate(ctx, llm.Request{Phase: llm.PhaseExtract, Prompt: filled})
	if err != nil {
		return nil, usage, eris.Wrap(err, "assistant: extract")
	}
	usage = resp.Usage

	entity, err := ParseExtraction(resp.Text, a.defaultYears)
	if err != nil {
		metrics.MalformedOutputs.WithLabelValues(string(llm.PhaseExtract)).Inc()
		zap.L().Warn("unparseable extraction", zap.String("output", truncate(resp.Text, 200)), zap.Error(err))
		return nil, usage, err
	}

	zap.L().Debug("entity extracted",
		zap.String("company", entity.Company),
		zap.Ints("years", entity.Years),
	)
	return entity, usage, nil
}
