package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/finchat/internal/model"
)

// Validation modes.
const (
	ModeOffline  = "offline"  // template inspection and prompt filling only
	ModeGenerate = "generate" // anything that calls a generation provider
	ModeServe    = "serve"
)

// Providers accepted by llm.provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config holds the full application configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Prompt    PromptConfig    `yaml:"prompt" mapstructure:"prompt"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LLMConfig selects the generation provider and how it is called.
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst       int           `yaml:"burst" mapstructure:"burst"`
	Retry       RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Circuit     CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
}

// RetryConfig configures backoff for transient provider errors.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// CircuitConfig configures the provider circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PromptConfig configures the template catalog.
type PromptConfig struct {
	TemplatesDir string `yaml:"templates_dir" mapstructure:"templates_dir"` // empty = embedded templates
	MoneyUnit    string `yaml:"money_unit" mapstructure:"money_unit"`
}

// ExtractConfig configures company/year extraction.
type ExtractConfig struct {
	DefaultYears []int `yaml:"default_years" mapstructure:"default_years"`
	YearCount    int   `yaml:"year_count" mapstructure:"year_count"`
}

// Years returns the configured default years, or the YearCount most recent
// reporting years relative to now.
func (c ExtractConfig) Years(now time.Time) []int {
	if len(c.DefaultYears) > 0 {
		return model.NormalizeYears(c.DefaultYears)
	}
	return model.RecentReportingYears(now, c.YearCount)
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml, .env and the environment.
func Load() (*Config, error) {
	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FINCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("anthropic.key", "FINCHAT_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("openai.key", "FINCHAT_OPENAI_KEY", "OPENAI_API_KEY")

	// Defaults
	v.SetDefault("llm.provider", ProviderAnthropic)
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("llm.rate_limit", 2.0)
	v.SetDefault("llm.burst", 4)
	v.SetDefault("llm.retry.max_attempts", 3)
	v.SetDefault("llm.retry.initial_backoff_ms", 500)
	v.SetDefault("llm.retry.max_backoff_ms", 30000)
	v.SetDefault("llm.retry.multiplier", 2.0)
	v.SetDefault("llm.retry.jitter_fraction", 0.25)
	v.SetDefault("llm.circuit.failure_threshold", 5)
	v.SetDefault("llm.circuit.reset_timeout_secs", 30)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("prompt.templates_dir", "")
	v.SetDefault("prompt.money_unit", "억원")
	v.SetDefault("extract.default_years", []int{})
	v.SetDefault("extract.year_count", 2)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		stringToIntSlice,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// stringToIntSlice decodes env values such as "2022,2023" or "2022 2023"
// into []int fields.
func stringToIntSlice(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String || t != reflect.TypeOf([]int(nil)) {
		return data, nil
	}
	parts := strings.FieldsFunc(data.(string), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, eris.Wrapf(err, "config: %q is not an integer", p)
		}
		out = append(out, n)
	}
	return out, nil
}

// Validate checks the settings required by mode and reports every problem
// at once.
func (c *Config) Validate(mode string) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch mode {
	case ModeOffline, ModeGenerate, ModeServe:
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	for _, y := range c.Extract.DefaultYears {
		if y < 1000 || y > 9999 {
			add("extract.default_years: %d is not a four-digit year", y)
		}
	}
	if len(c.Extract.DefaultYears) == 0 && (c.Extract.YearCount < 1 || c.Extract.YearCount > 10) {
		add("extract.year_count must be between 1 and 10")
	}

	if mode == ModeGenerate || mode == ModeServe {
		switch c.LLM.Provider {
		case ProviderAnthropic:
			if c.Anthropic.Key == "" {
				add("anthropic.key is required")
			}
		case ProviderOpenAI:
			if c.OpenAI.Key == "" {
				add("openai.key is required")
			}
		default:
			add("llm.provider must be %q or %q, got %q", ProviderAnthropic, ProviderOpenAI, c.LLM.Provider)
		}
		if c.LLM.MaxTokens <= 0 {
			add("llm.max_tokens must be > 0")
		}
		if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
			add("llm.temperature must be between 0 and 2")
		}
		if c.LLM.RateLimit < 0 {
			add("llm.rate_limit must be >= 0")
		}
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 50 {
			add("batch.concurrency must be between 1 and 50")
		}
	}

	if mode == ModeServe && c.Server.Port <= 0 {
		add("server.port must be > 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
