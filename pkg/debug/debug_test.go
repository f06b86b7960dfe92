package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func withCapture(t *testing.T) *bytes.Buffer {
	t.Helper()
	prevEnabled, prevLogger := enabled, logger
	t.Cleanup(func() {
		enabled, logger = prevEnabled, prevLogger
	})
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	return &buf
}

func TestLogWritesWhenEnabled(t *testing.T) {
	buf := withCapture(t)
	Log("placed %d nodes", 3)
	LogTiming("route", 2*time.Millisecond)
	LogIf(false, "hidden")
	LogIf(true, "shown")

	out := buf.String()
	for _, want := range []string{"placed 3 nodes", "route took 2ms", "shown"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("LogIf(false) should not write")
	}
}

func TestLogSilentWhenDisabled(t *testing.T) {
	buf := withCapture(t)
	SetEnabled(false)
	Log("nothing")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
