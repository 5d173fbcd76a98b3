package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finchat/internal/assistant"
	"github.com/sells-group/finchat/internal/config"
	"github.com/sells-group/finchat/internal/llm"
	"github.com/sells-group/finchat/internal/prompt"
)

// loadCatalog loads the template catalog from the configured directory, or
// the embedded templates when none is set. dir overrides the config.
func loadCatalog(c *config.Config, dir string) (*prompt.Catalog, error) {
	constants := map[string]string{}
	for k, v := range prompt.DefaultConstants {
		constants[k] = v
	}
	if c.Prompt.MoneyUnit != "" {
		constants["money_unit"] = c.Prompt.MoneyUnit
	}
	opt := prompt.WithConstants(constants)

	if dir == "" {
		dir = c.Prompt.TemplatesDir
	}
	if dir == "" {
		return prompt.Default(opt)
	}
	catalog, err := prompt.LoadDir(dir, opt)
	if err != nil {
		return nil, eris.Wrapf(err, "load templates from %s", dir)
	}
	zap.L().Debug("loaded templates", zap.String("dir", dir), zap.Int("count", len(catalog.Templates())))
	return catalog, nil
}

// initAssistant validates the config for mode, then builds the catalog,
// the generator and the assistant. An offline assistant has no generator.
func initAssistant(mode string, opts ...assistant.Option) (*assistant.Assistant, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(cfg, "")
	if err != nil {
		return nil, err
	}

	var gen llm.Generator
	if mode != config.ModeOffline {
		gen, err = llm.New(cfg)
		if err != nil {
			return nil, err
		}
	}

	opts = append([]assistant.Option{assistant.WithDefaultYears(cfg.Extract.Years(time.Now()))}, opts...)
	return assistant.New(gen, catalog, opts...), nil
}
