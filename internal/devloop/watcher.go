package devloop

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"plugmerge/internal/source"
	"plugmerge/internal/trace"
)

const DefaultDebounce = 300 * time.Millisecond

// SourceWatcher reports edits to allow-listed files in one directory.
// Bursts of events (editor save sequences) are folded into one callback
// once the directory has been quiet for the debounce period.
type SourceWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	allow    map[string]struct{}
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
	last    time.Time
}

// NewSourceWatcher starts watching dir. Call Run to receive changes.
func NewSourceWatcher(dir string, allow []string, debounce time.Duration) (*SourceWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	set := make(map[string]struct{}, len(allow))
	for _, name := range allow {
		set[source.CanonicalName(name)] = struct{}{}
	}
	return &SourceWatcher{
		watcher:  w,
		dir:      dir,
		allow:    set,
		debounce: debounce,
		pending:  make(map[string]struct{}),
	}, nil
}

// Run blocks until ctx is done, calling onChange with the sorted names of
// the files touched in each quiet-period batch. onChange runs on Run's
// goroutine, so batches never overlap. The watcher is closed on return.
func (sw *SourceWatcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	defer sw.watcher.Close()
	tracer := trace.FromContext(ctx)

	tick := time.NewTicker(sw.debounce / 3)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return nil
			}
			sw.note(ev)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return nil
			}
			trace.Error(tracer, trace.ScopeStage, "watch", err)

		case now := <-tick.C:
			if batch := sw.flush(now); len(batch) > 0 {
				trace.Point(tracer, trace.ScopeStage, "watch.change", fmt.Sprint(batch))
				onChange(ctx, batch)
			}
		}
	}
}

func (sw *SourceWatcher) note(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	name := source.CanonicalName(filepath.Base(ev.Name))
	if _, ok := sw.allow[name]; !ok {
		return
	}
	sw.mu.Lock()
	sw.pending[name] = struct{}{}
	sw.last = time.Now()
	sw.mu.Unlock()
}

func (sw *SourceWatcher) flush(now time.Time) []string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if len(sw.pending) == 0 || now.Sub(sw.last) < sw.debounce {
		return nil
	}
	batch := make([]string, 0, len(sw.pending))
	for name := range sw.pending {
		batch = append(batch, name)
	}
	sort.Strings(batch)
	clear(sw.pending)
	return batch
}
