// Package assistant classifies financial questions, extracts the company and
// years they refer to, and turns them into filled prompts for generation.
package assistant

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finchat/internal/llm"
	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/prompt"
)

var (
	// ErrMalformedClassification is returned when the classifier output has
	// no recognisable 작업유형 line. The category is never guessed.
	ErrMalformedClassification = eris.New("malformed classification output")

	// ErrMalformedExtraction is returned when the extractor output lacks the
	// 회사 or 연도 line.
	ErrMalformedExtraction = eris.New("malformed extraction output")

	// ErrEmptyQuestion is returned before any generation call when the
	// question is blank after normalization.
	ErrEmptyQuestion = eris.New("empty question")
)

// defaultYearCount is the number of reporting years used when none are
// configured.
const defaultYearCount = 2

// Assistant runs the classify, extract, build and answer steps. It holds no
// per-request state and is safe for concurrent use.
type Assistant struct {
	gen          llm.Generator
	catalog      *prompt.Catalog
	materials    MaterialSource
	defaultYears []int
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithMaterials sets the source of reference material for Answer.
func WithMaterials(src MaterialSource) Option {
	return func(a *Assistant) { a.materials = src }
}

// WithDefaultYears sets the years Extract falls back to when a question
// names none.
func WithDefaultYears(years []int) Option {
	return func(a *Assistant) {
		if years = model.NormalizeYears(years); len(years) > 0 {
			a.defaultYears = years
		}
	}
}

// New creates an Assistant. Without WithDefaultYears the two most recent
// reporting years are used.
func New(gen llm.Generator, catalog *prompt.Catalog, opts ...Option) *Assistant {
	a := &Assistant{
		gen:          gen,
		catalog:      catalog,
		materials:    StaticMaterials(nil),
		defaultYears: model.RecentReportingYears(time.Now(), defaultYearCount),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Catalog returns the template catalog in use.
func (a *Assistant) Catalog() *prompt.Catalog {
	return a.catalog
}

// DefaultYears returns a copy of the extraction fallback years.
func (a *Assistant) DefaultYears() []int {
	return append([]int(nil), a.defaultYears...)
}

func normalize(question string) (string, error) {
	q := model.NormalizeQuestion(question)
	if q == "" {
		return "", ErrEmptyQuestion
	}
	return q, nil
}

func formatYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}
