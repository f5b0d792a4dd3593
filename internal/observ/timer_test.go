package observ

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := NewTimer()
	tm.now = func() time.Time { return clock }

	read := tm.Begin("read")
	clock = clock.Add(3 * time.Millisecond)
	tm.End(read, "4 modules")

	write := tm.Begin("write")
	clock = clock.Add(1500 * time.Microsecond)
	tm.End(write, "")

	tm.End(42, "ignored")

	report := tm.Report()
	if len(report.Stages) != 2 {
		t.Fatalf("len(stages) = %d, want 2", len(report.Stages))
	}
	if report.Stages[0].DurationMS != 3 || report.Stages[0].Note != "4 modules" {
		t.Fatalf("read stage = %+v", report.Stages[0])
	}
	if report.TotalMS != 4.5 {
		t.Fatalf("TotalMS = %v, want 4.5", report.TotalMS)
	}

	var buf bytes.Buffer
	if err := tm.WriteSummary(&buf); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if !strings.Contains(buf.String(), "// 4 modules") || !strings.Contains(buf.String(), "total") {
		t.Fatalf("unexpected summary:\n%s", buf.String())
	}
}

func TestEmptyTimer(t *testing.T) {
	if got := NewTimer().Report(); got.TotalMS != 0 || got.Stages != nil {
		t.Fatalf("empty report = %+v", got)
	}
}
