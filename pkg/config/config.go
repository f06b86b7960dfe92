// Package config handles loading and saving casefile configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/casefile/config.yaml
//   - Data:    ~/.local/share/casefile/ (board database)
//   - State:   ~/.local/state/casefile/ (debug logs)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/genai"
	"github.com/vanderheijden86/casefile/pkg/geometry"
)

const appName = "casefile"

// Board background themes.
const (
	ThemeStone = "stone"
	ThemeBlue  = "blue"
)

// StorageConfig locates persisted state.
type StorageConfig struct {
	DBPath         string `yaml:"db_path,omitempty"`         // SQLite file (default: DataDir/board.db)
	DocumentMirror string `yaml:"document_mirror,omitempty"` // Optional plain-text copy of the document
}

// CanvasConfig holds board interaction preferences.
type CanvasConfig struct {
	DefaultVariant   board.LinkVariant `yaml:"default_variant,omitempty"`   // Variant for new links
	WheelSensitivity float64           `yaml:"wheel_sensitivity,omitempty"` // Zoom factor per wheel unit
	Theme            string            `yaml:"theme,omitempty"`             // stone, blue
}

// GenAIConfig selects the document collaborator. Environment variables win.
type GenAIConfig struct {
	Provider string `yaml:"provider,omitempty"` // gemini, offline
	Model    string `yaml:"model,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Config is the top-level configuration for casefile.
type Config struct {
	Storage StorageConfig `yaml:"storage,omitempty"`
	Canvas  CanvasConfig  `yaml:"canvas,omitempty"`
	GenAI   GenAIConfig   `yaml:"genai,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	cfg := Config{
		Canvas: CanvasConfig{
			DefaultVariant:   board.VariantNeutral,
			WheelSensitivity: geometry.WheelSensitivity,
			Theme:            ThemeStone,
		},
	}
	if dir := DataDir(); dir != "" {
		cfg.Storage.DBPath = filepath.Join(dir, "board.db")
	}
	return cfg
}

// ConfigDir returns the XDG config directory for casefile.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for casefile.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the XDG state directory for casefile.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.Storage.DBPath = expandHome(cfg.Storage.DBPath)
	cfg.Storage.DocumentMirror = expandHome(cfg.Storage.DocumentMirror)
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate rejects values the board cannot use.
func (c Config) Validate() error {
	if v := c.Canvas.DefaultVariant; v != "" && !v.Valid() {
		return fmt.Errorf("canvas.default_variant: unknown link variant %q", v)
	}
	if c.Canvas.WheelSensitivity < 0 {
		return fmt.Errorf("canvas.wheel_sensitivity must not be negative")
	}
	switch c.Canvas.Theme {
	case "", ThemeStone, ThemeBlue:
	default:
		return fmt.Errorf("canvas.theme: unknown theme %q (want %s or %s)", c.Canvas.Theme, ThemeStone, ThemeBlue)
	}
	switch genai.Provider(strings.ToLower(c.GenAI.Provider)) {
	case "", genai.ProviderGemini, genai.ProviderOffline:
	default:
		return fmt.Errorf("genai.provider: unknown provider %q", c.GenAI.Provider)
	}
	return nil
}

// Variant returns the default link variant, falling back to neutral.
func (c Config) Variant() board.LinkVariant {
	if c.Canvas.DefaultVariant.Valid() {
		return c.Canvas.DefaultVariant
	}
	return board.VariantNeutral
}

// Sensitivity returns the wheel sensitivity, falling back to the default.
func (c Config) Sensitivity() float64 {
	if c.Canvas.WheelSensitivity > 0 {
		return c.Canvas.WheelSensitivity
	}
	return geometry.WheelSensitivity
}

// GenAIConfig merges the file settings under the environment. A variable
// that is set always wins over the file.
func (c Config) GenAIConfig() genai.Config {
	gc := genai.ConfigFromEnv()
	if os.Getenv(genai.EnvProvider) == "" && c.GenAI.Provider != "" {
		gc.Provider = genai.Provider(strings.ToLower(c.GenAI.Provider))
	}
	if os.Getenv(genai.EnvModel) == "" && c.GenAI.Model != "" {
		gc.Model = c.GenAI.Model
	}
	if os.Getenv(genai.EnvEndpoint) == "" && c.GenAI.Endpoint != "" {
		gc.Endpoint = c.GenAI.Endpoint
	}
	return gc
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
