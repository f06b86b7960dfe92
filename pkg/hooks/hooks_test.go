package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeHooksFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write hooks.yaml: %v", err)
	}
}

func testContext() SnapshotContext {
	return SnapshotContext{
		Path:      "/tmp/board.svg",
		Format:    "svg",
		Title:     "Case File: #8841",
		ItemCount: 5,
		LinkCount: 4,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestSnapshotContextToEnv(t *testing.T) {
	want := []string{
		"CASEFILE_SNAPSHOT_PATH=/tmp/board.svg",
		"CASEFILE_SNAPSHOT_FORMAT=svg",
		"CASEFILE_BOARD_TITLE=Case File: #8841",
		"CASEFILE_ITEM_COUNT=5",
		"CASEFILE_LINK_COUNT=4",
		"CASEFILE_TIMESTAMP=2026-01-02T03:04:05Z",
	}
	if diff := cmp.Diff(want, testContext().ToEnv()); diff != "" {
		t.Errorf("ToEnv (-want +got):\n%s", diff)
	}
}

func TestLoaderNoConfig(t *testing.T) {
	l := NewLoader(WithDir(t.TempDir()))
	if err := l.Load(); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if l.HasHooks() {
		t.Error("no hooks expected")
	}
}

func TestLoaderDefaults(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, `
hooks:
  pre-snapshot:
    - command: echo pre
      timeout: 5s
  post-snapshot:
    - name: upload
      command: echo post
      timeout: 2
      env:
        TARGET: ${CASEFILE_SNAPSHOT_PATH}.bak
    - command: "   "
`)
	l := NewLoader(WithDir(dir))
	if err := l.Load(); err != nil {
		t.Fatal(err)
	}
	pre := l.Hooks(PreSnapshot)
	if len(pre) != 1 || pre[0].Name != "pre-snapshot-1" || pre[0].OnError != "fail" || pre[0].Timeout != 5*time.Second {
		t.Errorf("pre hooks = %+v", pre)
	}
	post := l.Hooks(PostSnapshot)
	if len(post) != 1 || post[0].OnError != "continue" || post[0].Timeout != 2*time.Second {
		t.Errorf("post hooks = %+v", post)
	}
	if len(l.Warnings()) != 1 || !strings.Contains(l.Warnings()[0], "empty command") {
		t.Errorf("warnings = %v", l.Warnings())
	}
	if l.Hooks("bogus") != nil {
		t.Error("unknown phase should have no hooks")
	}
}

func TestLoaderRejects(t *testing.T) {
	tests := map[string]string{
		"invalid yaml":    "hooks: [",
		"invalid timeout": "hooks:\n  pre-snapshot:\n    - command: echo\n      timeout: soon\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeHooksFile(t, dir, content)
			if err := NewLoader(WithDir(dir)).Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExecutorRunsWithEnvironment(t *testing.T) {
	cfg := &Config{Hooks: ByPhase{PreSnapshot: []Hook{{
		Name:    "env",
		Command: `echo "$CASEFILE_SNAPSHOT_FORMAT $CASEFILE_ITEM_COUNT $TARGET"`,
		Timeout: 5 * time.Second,
		Env:     map[string]string{"TARGET": "${CASEFILE_SNAPSHOT_PATH}.bak"},
		OnError: "fail",
	}}}}
	e := NewExecutor(cfg, testContext())
	if err := e.RunPreSnapshot(context.Background()); err != nil {
		t.Fatal(err)
	}
	res := e.Results()
	if len(res) != 1 || !res[0].Success {
		t.Fatalf("results = %+v", res)
	}
	if want := "svg 5 /tmp/board.svg.bak"; res[0].Stdout != want {
		t.Errorf("stdout = %q, want %q", res[0].Stdout, want)
	}
}

func TestPreSnapshotStopsOnFailure(t *testing.T) {
	cfg := &Config{Hooks: ByPhase{PreSnapshot: []Hook{
		{Name: "gate", Command: "echo nope >&2; exit 3", Timeout: 5 * time.Second, OnError: "fail"},
		{Name: "never", Command: "echo ran", Timeout: 5 * time.Second, OnError: "fail"},
	}}}
	e := NewExecutor(cfg, testContext())
	err := e.RunPreSnapshot(context.Background())
	if err == nil || !strings.Contains(err.Error(), `"gate"`) {
		t.Fatalf("err = %v", err)
	}
	if n := len(e.Results()); n != 1 {
		t.Errorf("ran %d hooks, want 1", n)
	}
	if s := e.Summary(); !strings.Contains(s, "1 failed") || !strings.Contains(s, "nope") {
		t.Errorf("summary = %q", s)
	}
}

func TestPostSnapshotRunsAll(t *testing.T) {
	cfg := &Config{Hooks: ByPhase{PostSnapshot: []Hook{
		{Name: "soft", Command: "exit 1", Timeout: 5 * time.Second, OnError: "continue"},
		{Name: "hard", Command: "exit 1", Timeout: 5 * time.Second, OnError: "fail"},
		{Name: "last", Command: "echo still-running", Timeout: 5 * time.Second, OnError: "continue"},
	}}}
	e := NewExecutor(cfg, testContext())
	err := e.RunPostSnapshot(context.Background())
	if err == nil || strings.Contains(err.Error(), "soft") || !strings.Contains(err.Error(), "hard") {
		t.Errorf("err = %v", err)
	}
	res := e.Results()
	if len(res) != 3 || !res[2].Success || res[2].Stdout != "still-running" {
		t.Errorf("results = %+v", res)
	}
}

func TestExecutorTimeout(t *testing.T) {
	cfg := &Config{Hooks: ByPhase{PreSnapshot: []Hook{
		{Name: "slow", Command: "sleep 10", Timeout: 100 * time.Millisecond, OnError: "fail"},
	}}}
	e := NewExecutor(cfg, testContext())
	if err := e.RunPreSnapshot(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
	r := e.Results()[0]
	if r.Success || !strings.Contains(r.Error.Error(), "timed out") {
		t.Errorf("result = %+v", r)
	}
	if r.Duration < 100*time.Millisecond {
		t.Errorf("duration = %v", r.Duration)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if e, err := Load(dir, testContext(), false); err != nil || e != nil {
		t.Fatalf("no config: e=%v err=%v", e, err)
	}
	writeHooksFile(t, dir, "hooks:\n  post-snapshot:\n    - command: echo ok\n")
	if e, err := Load(dir, testContext(), true); err != nil || e != nil {
		t.Fatalf("disabled: e=%v err=%v", e, err)
	}
	e, err := Load(dir, testContext(), false)
	if err != nil || e == nil {
		t.Fatalf("configured: e=%v err=%v", e, err)
	}
	if len(e.Results()) != 0 || e.Summary() != "" {
		t.Error("nothing should have run yet")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("ab", 3); got != "ab" {
		t.Errorf("truncate = %q", got)
	}
}
