package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeQuestion trims q and converts it to Unicode NFC so decomposed
// Hangul (as produced by some macOS inputs) matches the prompt examples.
func NormalizeQuestion(q string) string {
	return strings.TrimSpace(norm.NFC.String(q))
}

// TokenUsage tracks token consumption across generation calls.
type TokenUsage struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// Add merges token usage from another instance.
func (t *TokenUsage) Add(other TokenUsage) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.Cost += other.Cost
}
