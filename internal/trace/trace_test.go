package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"off", LevelOff, false},
		{"", LevelOff, false},
		{"ERROR", LevelError, false},
		{"phase", LevelPhase, false},
		{"detail", LevelDetail, false},
		{"debug", LevelDebug, false},
		{"loud", LevelOff, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	if LevelPhase.ShouldEmit(KindPoint, ScopeModule) {
		t.Fatal("phase level must not emit module events")
	}
	if !LevelDetail.ShouldEmit(KindPoint, ScopeModule) {
		t.Fatal("detail level must emit module events")
	}
	if LevelDetail.ShouldEmit(KindPoint, ScopeFrame) {
		t.Fatal("detail level must not emit frame events")
	}
	if !LevelError.ShouldEmit(KindError, ScopeFrame) {
		t.Fatal("error events pass every enabled level")
	}
	if LevelOff.ShouldEmit(KindError, ScopeCommand) {
		t.Fatal("off level emits nothing")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopeStage, "merge", 0)
	Point(tr, ScopeModule, "module", "Tebex.cs")
	Point(tr, ScopeFrame, "rcon.recv", "hidden")
	span.WithExtra("modules", "2").End("ok")

	out := buf.String()
	for _, want := range []string{"→ merge", "• module (Tebex.cs)", "← merge (ok) {modules=2}"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("frame event leaked at detail level:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatNDJSON)
	Error(tr, ScopeStage, "dial", errors.New("refused"))

	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if decoded["kind"] != "error" || decoded["detail"] != "refused" {
		t.Fatalf("unexpected event: %v", decoded)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeFrame, name, "")
	}
	snap := ring.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len(snapshot) = %d, want 3", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Fatalf("snapshot[%d] = %q, want %q", i, snap[i].Name, want)
		}
	}
}

func TestNewOffReturnsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer must be disabled")
	}
}

func TestNewBothExposesRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("New(ModeBoth) = %T, want *MultiTracer", tr)
	}
	Point(tr, ScopeStage, "deploy", "")
	if multi.Ring() == nil || len(multi.Ring().Snapshot()) != 1 {
		t.Fatal("ring tracer did not record the event")
	}
	if !strings.Contains(buf.String(), "deploy") {
		t.Fatalf("stream output missing event: %q", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer must resolve to Nop")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not recovered from context")
	}
}
