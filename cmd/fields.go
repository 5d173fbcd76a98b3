package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/finchat/internal/prompt"
)

// parseFields merges a YAML field file with k=v pairs. Pairs win.
func parseFields(file string, pairs []string) (prompt.Fields, error) {
	fields := prompt.Fields{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, eris.Wrapf(err, "read fields file %s", file)
		}
		var fromFile map[string]string
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, eris.Wrapf(err, "parse fields file %s", file)
		}
		fields = fields.Merge(fromFile)
	}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, eris.Errorf("invalid field %q, want key=value", p)
		}
		if strings.HasPrefix(v, "@") {
			data, err := os.ReadFile(v[1:])
			if err != nil {
				return nil, eris.Wrapf(err, "read field %s", k)
			}
			v = string(data)
		}
		fields[k] = v
	}
	return fields, nil
}
