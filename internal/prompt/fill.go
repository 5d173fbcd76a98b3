package prompt

import (
	"regexp"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMissingPlaceholder is returned when a declared field has no value.
// A template is never returned partially filled.
var ErrMissingPlaceholder = eris.New("missing placeholder")

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Fields maps placeholder names to their values.
type Fields map[string]string

// Merge returns a copy of f overlaid with other.
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Placeholders returns the distinct placeholder names in body in order of
// first appearance.
func Placeholders(body string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// Missing returns the declared fields that have no entry in fields.
func (t *Template) Missing(fields Fields) []string {
	var missing []string
	for _, name := range t.Fields {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Fill substitutes every declared placeholder. Substitution is a single
// pass, so braces inside values are copied verbatim. Keys in fields that
// the template does not declare are ignored.
func (t *Template) Fill(fields Fields) (string, error) {
	if missing := t.Missing(fields); len(missing) > 0 {
		return "", eris.Wrapf(ErrMissingPlaceholder, "template %s: %s", t.ID, strings.Join(missing, ", "))
	}

	out := placeholderPattern.ReplaceAllStringFunc(t.Body, func(m string) string {
		name := m[1 : len(m)-1]
		if !slices.Contains(t.Fields, name) {
			return m
		}
		return fields[name]
	})
	return out, nil
}
