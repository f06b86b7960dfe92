// Package hooks runs user commands around board snapshots.
// Hooks are configured in hooks.yaml next to config.yaml and run before
// a snapshot is written (pre-snapshot) and after it lands (post-snapshot).
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase is when a hook runs.
type Phase string

const (
	// PreSnapshot runs before the file is written. Failure cancels the snapshot.
	PreSnapshot Phase = "pre-snapshot"
	// PostSnapshot runs after the file is written. Failure is reported only.
	PostSnapshot Phase = "post-snapshot"
)

// FileName is the hook configuration file inside the config directory.
const FileName = "hooks.yaml"

// DefaultTimeout bounds a hook without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"`
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"` // "fail" or "continue"
}

// Config is the parsed hooks.yaml.
type Config struct {
	Hooks ByPhase `yaml:"hooks" json:"hooks"`
}

// ByPhase groups hooks by phase.
type ByPhase struct {
	PreSnapshot  []Hook `yaml:"pre-snapshot,omitempty" json:"pre-snapshot,omitempty"`
	PostSnapshot []Hook `yaml:"post-snapshot,omitempty" json:"post-snapshot,omitempty"`
}

// SnapshotContext describes the snapshot a hook runs around. It reaches
// the command as CASEFILE_* environment variables.
type SnapshotContext struct {
	Path      string
	Format    string
	Title     string
	ItemCount int
	LinkCount int
	Timestamp time.Time
}

// ToEnv converts the context to environment entries.
func (c SnapshotContext) ToEnv() []string {
	return []string{
		"CASEFILE_SNAPSHOT_PATH=" + c.Path,
		"CASEFILE_SNAPSHOT_FORMAT=" + c.Format,
		"CASEFILE_BOARD_TITLE=" + c.Title,
		fmt.Sprintf("CASEFILE_ITEM_COUNT=%d", c.ItemCount),
		fmt.Sprintf("CASEFILE_LINK_COUNT=%d", c.LinkCount),
		"CASEFILE_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Loader reads hooks.yaml from a directory.
type Loader struct {
	dir      string
	config   *Config
	warnings []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDir sets the directory holding hooks.yaml (default: current directory).
func WithDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.dir = dir
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.dir == "" {
		l.dir, _ = os.Getwd()
	}
	return l
}

// Path is the file the loader reads.
func (l *Loader) Path() string {
	return filepath.Join(l.dir, FileName)
}

// Load reads and normalizes hooks.yaml. A missing file means no hooks.
func (l *Loader) Load() error {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.config = &Config{}
			return nil
		}
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Hooks.PreSnapshot, l.warnings = normalizeHooks(cfg.Hooks.PreSnapshot, PreSnapshot, l.warnings)
	cfg.Hooks.PostSnapshot, l.warnings = normalizeHooks(cfg.Hooks.PostSnapshot, PostSnapshot, l.warnings)
	l.config = &cfg
	return nil
}

// normalizeHooks applies defaults, drops empty commands, and accumulates warnings.
func normalizeHooks(hooks []Hook, phase Phase, warnings []string) ([]Hook, []string) {
	var out []Hook
	for i, hook := range hooks {
		if strings.TrimSpace(hook.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if hook.Timeout <= 0 {
			hook.Timeout = DefaultTimeout
		}
		if hook.OnError == "" {
			if phase == PreSnapshot {
				hook.OnError = "fail"
			} else {
				hook.OnError = "continue"
			}
		}
		if hook.Name == "" {
			hook.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, hook)
	}
	return out, warnings
}

// Config returns the loaded configuration, empty before Load.
func (l *Loader) Config() *Config {
	if l.config == nil {
		return &Config{}
	}
	return l.config
}

// HasHooks reports whether any hook is configured.
func (l *Loader) HasHooks() bool {
	if l.config == nil {
		return false
	}
	return len(l.config.Hooks.PreSnapshot) > 0 || len(l.config.Hooks.PostSnapshot) > 0
}

// Hooks returns the hooks for phase.
func (l *Loader) Hooks(phase Phase) []Hook {
	if l.config == nil {
		return nil
	}
	switch phase {
	case PreSnapshot:
		return l.config.Hooks.PreSnapshot
	case PostSnapshot:
		return l.config.Hooks.PostSnapshot
	default:
		return nil
	}
}

// Warnings returns problems found while loading.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// UnmarshalYAML accepts timeouts as durations ("5s") or bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	// Must mirror Hook except for Timeout.
	type hookDTO struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout,omitempty"`
		Env     map[string]string `yaml:"env,omitempty"`
		OnError string            `yaml:"on_error,omitempty"`
	}

	var dto hookDTO
	if err := node.Decode(&dto); err != nil {
		return err
	}
	h.Name = dto.Name
	h.Command = dto.Command
	h.Env = dto.Env
	h.OnError = dto.OnError

	if dto.Timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(dto.Timeout)
	if err == nil {
		h.Timeout = d
		return nil
	}
	var seconds float64
	if _, scanErr := fmt.Sscanf(dto.Timeout, "%f", &seconds); scanErr != nil {
		return fmt.Errorf("invalid timeout %q: %w", dto.Timeout, err)
	}
	h.Timeout = time.Duration(seconds * float64(time.Second))
	return nil
}
