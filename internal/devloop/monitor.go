package devloop

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"plugmerge/internal/health"
	"plugmerge/internal/rcon"
	"plugmerge/internal/trace"
)

const (
	DefaultSuccessPhrase = "was compiled successfully"
	DefaultListingMarker = "Listing"
)

var (
	echoColor    = color.New(color.Faint)
	readingColor = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

// MonitorOptions configures a Monitor. Zero values select the defaults.
type MonitorOptions struct {
	SuccessPhrase string
	ListingMarker string
	Out           io.Writer
	Sink          health.Sink
	Tracer        trace.Tracer
	// QuietReadings stops readings from being printed; they still reach Sink.
	QuietReadings bool
}

// Monitor classifies server messages. It owns the reload flag and the
// hook-time tracker; both are guarded by one mutex so the receive loop,
// the reload test and the TUI can share them.
type Monitor struct {
	mu       sync.Mutex
	reloaded bool
	tracker  *health.Tracker

	phrase string
	marker string
	out    io.Writer
	sink   health.Sink
	tracer trace.Tracer
	quiet  bool
}

var _ rcon.Handler = (*Monitor)(nil)

func NewMonitor(opts MonitorOptions) *Monitor {
	if opts.SuccessPhrase == "" {
		opts.SuccessPhrase = DefaultSuccessPhrase
	}
	if opts.ListingMarker == "" {
		opts.ListingMarker = DefaultListingMarker
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	return &Monitor{
		tracker: health.NewTracker(),
		phrase:  opts.SuccessPhrase,
		marker:  opts.ListingMarker,
		out:     opts.Out,
		sink:    opts.Sink,
		tracer:  opts.Tracer,
		quiet:   opts.QuietReadings,
	}
}

// HandleMessage applies the classification rules to one message:
// listings and empty bodies are not echoed, the success phrase sets the
// reload flag, and listings feed the hook-time tracker. Extraction
// failures are reported and never stop the receive loop.
func (m *Monitor) HandleMessage(msg rcon.Message) {
	body := msg.Message
	listing := strings.Contains(body, m.marker)

	m.mu.Lock()
	defer m.mu.Unlock()

	if body != "" && !listing {
		echoColor.Fprintf(m.out, "> %s\n", body)
	}
	if strings.Contains(body, m.phrase) {
		m.reloaded = true
		trace.Point(m.tracer, trace.ScopeFrame, "reload.confirmed", body)
	}
	if !listing {
		return
	}

	v, err := health.Extract(body)
	switch {
	case errors.Is(err, health.ErrNoSample):
		warnColor.Fprintln(m.out, "hook time: no match")
		return
	case err != nil:
		warnColor.Fprintf(m.out, "hook time: %v\n", err)
		trace.Error(m.tracer, trace.ScopeFrame, "health.extract", err)
		return
	}

	r := m.tracker.Observe(v)
	if !m.quiet {
		readingColor.Fprintln(m.out, FormatReading(r))
	}
	trace.Point(m.tracer, trace.ScopeFrame, "health.sample", FormatReading(r))
	if m.sink != nil {
		m.sink.OnReading(r)
	}
}

// FormatReading renders a reading as "hook time <sample>s (min <min>s, max <max>s)".
func FormatReading(r health.Reading) string {
	return fmt.Sprintf("hook time %.4fs (min %.4fs, max %.4fs)", r.Sample.Value, r.Min, r.Max)
}

// ArmReload clears the reload flag before a new reload is requested.
func (m *Monitor) ArmReload() {
	m.mu.Lock()
	m.reloaded = false
	m.mu.Unlock()
}

// ReloadSucceeded reports whether the success phrase was seen since the
// last ArmReload.
func (m *Monitor) ReloadSucceeded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloaded
}

// Bounds returns the tracker's current minimum and maximum.
func (m *Monitor) Bounds() (lo, hi float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker.Bounds()
}

// Samples returns how many hook times were recorded.
func (m *Monitor) Samples() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker.Count()
}
