package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"plugmerge/internal/health"
)

func reading(min, v, max float64, seq uint64) health.Reading {
	return health.Reading{Min: min, Max: max, Sample: health.Sample{Value: v, Seq: seq}}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		r    health.Reading
		want float64
	}{
		{reading(0.015, 0.015, 0.015, 1), 0},
		{reading(0.1, 0.1, 0.3, 2), 0},
		{reading(0.1, 0.3, 0.3, 3), 1},
		{reading(0.1, 0.2, 0.3, 4), 0.5},
	}
	for _, tt := range tests {
		got := Position(tt.r)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Position(%+v) = %v, want %v", tt.r, got, tt.want)
		}
	}
}

func TestHookTimeModelAppliesReadings(t *testing.T) {
	ch := make(chan health.Reading)
	m := NewHookTimeModel("Tebex hook time", ch)

	if !strings.Contains(m.View(), "waiting for the first listing") {
		t.Fatalf("initial view = %q", m.View())
	}

	for i, r := range []health.Reading{
		reading(0.02, 0.02, 0.02, 1),
		reading(0.01, 0.01, 0.02, 2),
	} {
		next, _ := m.Update(readingMsg(r))
		m = next
		if got := m.(*monitorModel).count; got != i+1 {
			t.Fatalf("count = %d, want %d", got, i+1)
		}
	}
	view := m.View()
	for _, want := range []string{"0.0100s", "0.0200s", "(2 samples)", "#2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestHookTimeModelHistoryIsBounded(t *testing.T) {
	m := NewHookTimeModel("t", nil).(*monitorModel)
	for i := 1; i <= historySize+5; i++ {
		m.applyReading(reading(0, float64(i), float64(i), uint64(i)))
	}
	if len(m.history) != historySize {
		t.Fatalf("history = %d, want %d", len(m.history), historySize)
	}
	if m.history[0].Sample.Seq != 6 {
		t.Fatalf("oldest kept seq = %d, want 6", m.history[0].Sample.Seq)
	}
}

func TestHookTimeModelQuits(t *testing.T) {
	m := NewHookTimeModel("t", nil)
	_, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Fatal("doneMsg should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("doneMsg did not return tea.Quit")
	}

	m = NewHookTimeModel("t", nil)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if !strings.HasPrefix(m.View(), "stopped") && !strings.Contains(m.View(), "stopped: t") {
		t.Fatalf("view after quit = %q", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hook time monitor", 8, "hook ..."},
		{"ok", 8, "ok"},
		{"Tebex hook time monitor running", 20, "Tebex hook time m..."},
		{"Tebex hook time monitor running", 40, "Tebex hook time monitor running"},
		{"時間時間時間", 7, "時間..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.width)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
		if tt.width > 0 && runewidth.StringWidth(got) > tt.width {
			t.Errorf("truncate(%q, %d) is %d columns wide", tt.in, tt.width, runewidth.StringWidth(got))
		}
	}
}
