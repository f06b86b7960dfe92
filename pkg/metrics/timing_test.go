package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	st := m.Stats()
	if st.Count != 2 {
		t.Fatalf("count = %d", st.Count)
	}
	if st.AvgMs != 3 || st.MaxMs != 4 || st.MinMs != 2 {
		t.Errorf("stats = %+v", st)
	}

	m.Reset()
	if m.Count() != 0 || m.MinNs() != 0 {
		t.Error("reset should clear the metric")
	}
}

func TestTimerRecordsOnce(t *testing.T) {
	ResetAll()
	t.Cleanup(ResetAll)

	stop := Timer(PlacementSearch)
	stop()
	if PlacementSearch.Count() != 1 {
		t.Fatalf("count = %d", PlacementSearch.Count())
	}

	var got time.Duration
	TimerWithCallback(BridgeSummarize, func(d time.Duration) { got = d })()
	if BridgeSummarize.Count() != 1 || got < 0 {
		t.Errorf("callback timer count=%d d=%v", BridgeSummarize.Count(), got)
	}
}

func TestTimerDisabled(t *testing.T) {
	ResetAll()
	SetEnabled(false)
	t.Cleanup(func() {
		SetEnabled(true)
		ResetAll()
	})

	Timer(EdgeRouting)()
	if EdgeRouting.Count() != 0 {
		t.Error("disabled metrics should not record")
	}
}

func TestSummaryListsOnlyUsedMetrics(t *testing.T) {
	ResetAll()
	t.Cleanup(ResetAll)

	StoreSave.Record(time.Millisecond)
	out := Summary()
	if !strings.Contains(out, "store_save") {
		t.Errorf("summary missing store_save:\n%s", out)
	}
	if strings.Contains(out, "store_load") {
		t.Errorf("summary should skip empty metrics:\n%s", out)
	}
}
