package genai

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvProvider       = "CASEFILE_GENAI_PROVIDER"
	EnvModel          = "CASEFILE_GENAI_MODEL"
	EnvEndpoint       = "CASEFILE_GENAI_ENDPOINT"
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvAPIKeyFallback = "API_KEY"
)

// Defaults for the hosted provider.
const (
	DefaultModel    = "gemini-3-flash-preview"
	DefaultEndpoint = "https://generativelanguage.googleapis.com/"
	APIVersion      = "v1beta"
	DefaultTimeout  = 60 * time.Second
)

// Config selects and configures a Generator.
type Config struct {
	Provider Provider
	Model    string
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Normalized fills defaults.
func (c Config) Normalized() Config {
	c.Provider = Provider(strings.ToLower(strings.TrimSpace(string(c.Provider))))
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// ConfigFromEnv reads generator configuration from environment variables.
//
// Supported variables:
//   - CASEFILE_GENAI_PROVIDER: "gemini" or "offline" (default: gemini when an
//     API key is present, offline otherwise)
//   - CASEFILE_GENAI_MODEL: model name (default: DefaultModel)
//   - CASEFILE_GENAI_ENDPOINT: API base URL (default: DefaultEndpoint)
//   - GEMINI_API_KEY, then API_KEY: credentials for gemini
func ConfigFromEnv() Config {
	cfg := Config{
		Provider: Provider(os.Getenv(EnvProvider)),
		Model:    strings.TrimSpace(os.Getenv(EnvModel)),
		Endpoint: strings.TrimSpace(os.Getenv(EnvEndpoint)),
		APIKey:   strings.TrimSpace(os.Getenv(EnvAPIKey)),
	}
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKeyFallback))
	}
	cfg = cfg.Normalized()
	if cfg.Provider == "" {
		cfg.Provider = ProviderOffline
		if cfg.APIKey != "" {
			cfg.Provider = ProviderGemini
		}
	}
	return cfg
}

// NewFromConfig constructs a Generator for cfg.
func NewFromConfig(cfg Config) (Generator, error) {
	cfg = cfg.Normalized()
	switch cfg.Provider {
	case "", ProviderOffline:
		return NewOffline(), nil
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w; set %s or %s=%q", ErrNoAPIKey, EnvAPIKey, EnvProvider, ProviderOffline)
		}
		g, err := NewGemini(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown genai provider %q; expected %q or %q", cfg.Provider, ProviderGemini, ProviderOffline)
	}
}
