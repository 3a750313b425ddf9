// Package config loads the on-disk YAML configuration and applies
// environment overrides. Precedence is defaults, then file, then
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/martiendejong/Hazina-sub003/internal/observability"
	"github.com/martiendejong/Hazina-sub003/internal/reasoning"
)

// envPrefix namespaces every environment override.
const envPrefix = "HAZINA_"

// Config is the fully resolved runtime configuration.
type Config struct {
	LogLevel      string                      `yaml:"log_level"`
	LLM           LLMConfig                   `yaml:"llm"`
	Server        ServerConfig                `yaml:"server"`
	Reasoning     ReasoningConfig             `yaml:"reasoning"`
	Observability observability.TracingConfig `yaml:"observability"`
}

// LLMConfig describes the backend serving completion calls.
type LLMConfig struct {
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Model           string        `yaml:"model"`
	Timeout         time.Duration `yaml:"timeout"`
	CacheSize       int           `yaml:"cache_size"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	RetryMaxDelay   time.Duration `yaml:"retry_max_delay"`
	RetryMultiplier float64       `yaml:"retry_multiplier"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port           string        `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// ReasoningConfig carries engine defaults plus optional heuristic
// overrides. An absent heuristics section keeps the built-in table.
type ReasoningConfig struct {
	MinConfidence float64               `yaml:"min_confidence"`
	MaxSteps      int                   `yaml:"max_steps"`
	Heuristics    *reasoning.Heuristics `yaml:"heuristics"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		LogLevel: "info",
		LLM: LLMConfig{
			BaseURL:         "https://api.openai.com/v1",
			Model:           "gpt-4o-mini",
			Timeout:         120 * time.Second,
			CacheSize:       256,
			RetryAttempts:   3,
			RetryDelay:      500 * time.Millisecond,
			RetryMaxDelay:   8 * time.Second,
			RetryMultiplier: 2.0,
		},
		Server: ServerConfig{
			Port:         "8420",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Reasoning: ReasoningConfig{
			MinConfidence: 0.8,
		},
		Observability: observability.TracingConfig{
			ServiceName: "hazina",
		},
	}
}

// Load resolves the configuration from an optional YAML file path. An
// empty path skips the file layer; a named file that does not exist is
// an error, so typos fail loudly.
func Load(path string) (Config, error) {
	cfg := Default()

	// Seeding the heuristic table first lets a partial heuristics
	// section override individual knobs without zeroing the rest.
	seed := reasoning.DefaultHeuristics()
	cfg.Reasoning.Heuristics = &seed

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Reasoning.MinConfidence < 0 || c.Reasoning.MinConfidence > 1 {
		return fmt.Errorf("reasoning.min_confidence %v outside [0,1]", c.Reasoning.MinConfidence)
	}
	if c.Reasoning.MaxSteps < 0 {
		return fmt.Errorf("reasoning.max_steps must not be negative")
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}
	return nil
}

// applyEnv layers HAZINA_* variables over the current values. Only a
// small, documented surface is exposed; heuristic tables stay file-only.
func applyEnv(cfg *Config) {
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LLM.APIKey, "API_KEY")
	setString(&cfg.LLM.BaseURL, "BASE_URL")
	setString(&cfg.LLM.Model, "MODEL")
	setString(&cfg.Server.Port, "PORT")
	setFloat(&cfg.Reasoning.MinConfidence, "MIN_CONFIDENCE")
	setInt(&cfg.Reasoning.MaxSteps, "MAX_STEPS")
	setBool(&cfg.Observability.Enabled, "TRACING_ENABLED")
	setString(&cfg.Observability.Exporter, "TRACING_EXPORTER")
	setString(&cfg.Observability.OTLPEndpoint, "OTLP_ENDPOINT")

	// OPENAI_API_KEY works as a fallback so existing shells keep working.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*dst = parsed
		}
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = parsed
		}
	}
}
