package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// maxSummaryOutput caps captured stderr shown in a summary.
const maxSummaryOutput = 200

// Result is the outcome of one hook run.
type Result struct {
	Hook     Hook
	Phase    Phase
	Success  bool
	Stdout   string
	Stderr   string
	Error    error
	Duration time.Duration
}

// Executor runs the hooks of a Config against one snapshot.
type Executor struct {
	config  *Config
	context SnapshotContext
	results []Result
}

// NewExecutor creates an executor for cfg and the snapshot sc.
func NewExecutor(cfg *Config, sc SnapshotContext) *Executor {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Executor{config: cfg, context: sc}
}

// SetContext updates the snapshot context, e.g. once the final path is known.
func (e *Executor) SetContext(sc SnapshotContext) {
	e.context = sc
}

// RunPreSnapshot runs pre-snapshot hooks in order and stops at the first
// failure of a hook with on_error "fail".
func (e *Executor) RunPreSnapshot(ctx context.Context) error {
	for _, h := range e.config.Hooks.PreSnapshot {
		r := e.run(ctx, h, PreSnapshot)
		e.results = append(e.results, r)
		if !r.Success && h.OnError != "continue" {
			return fmt.Errorf("pre-snapshot hook %q failed: %w", h.Name, r.Error)
		}
	}
	return nil
}

// RunPostSnapshot runs every post-snapshot hook. Failures of hooks with
// on_error "fail" are joined into the returned error.
func (e *Executor) RunPostSnapshot(ctx context.Context) error {
	var errs []error
	for _, h := range e.config.Hooks.PostSnapshot {
		r := e.run(ctx, h, PostSnapshot)
		e.results = append(e.results, r)
		if !r.Success && h.OnError == "fail" {
			errs = append(errs, fmt.Errorf("post-snapshot hook %q failed: %w", h.Name, r.Error))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) run(ctx context.Context, h Hook, phase Phase) Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	env := append(os.Environ(), e.context.ToEnv()...)
	for k, v := range h.Env {
		env = append(env, k+"="+expandEnv(v, env))
	}
	cmd.Env = env
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h,
		Phase:    phase,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		r.Error = fmt.Errorf("timed out after %v", timeout)
	case err != nil:
		r.Error = err
	default:
		r.Success = true
	}
	return r
}

// expandEnv expands ${VAR} references in v against env, later entries winning.
func expandEnv(v string, env []string) string {
	return os.Expand(v, func(key string) string {
		for i := len(env) - 1; i >= 0; i-- {
			if k, val, ok := strings.Cut(env[i], "="); ok && k == key {
				return val
			}
		}
		return ""
	})
}

// Results returns the outcome of every hook run so far.
func (e *Executor) Results() []Result {
	return e.results
}

// Summary renders the results for a status line or stderr.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var ok, failed int
	var b strings.Builder
	for _, r := range e.results {
		if r.Success {
			ok++
			continue
		}
		failed++
		fmt.Fprintf(&b, "\n  %s (%s): %v", r.Hook.Name, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&b, ": %s", truncate(r.Stderr, maxSummaryOutput))
		}
	}
	head := fmt.Sprintf("hooks: %d ok", ok)
	if failed > 0 {
		head += fmt.Sprintf(", %d failed", failed)
	}
	return head + b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// Load reads hooks.yaml from dir and returns an executor for sc. It
// returns nil without error when disabled or when no hook is configured.
func Load(dir string, sc SnapshotContext, disabled bool) (*Executor, error) {
	if disabled {
		return nil, nil
	}
	l := NewLoader(WithDir(dir))
	if err := l.Load(); err != nil {
		return nil, err
	}
	if !l.HasHooks() {
		return nil, nil
	}
	return NewExecutor(l.Config(), sc), nil
}
