package devloop

import (
	"context"
	"fmt"
	"time"

	"plugmerge/internal/trace"
)

const DefaultReloadWait = 2 * time.Second

// ReloadResult is the outcome of one reload test.
type ReloadResult struct {
	Plugin    string
	Succeeded bool
	Waited    time.Duration
}

// ReloadCommand is the console command that recompiles plugin.
func ReloadCommand(plugin string) string {
	return "oxide.reload " + plugin
}

// ReloadTest asks the server to reload plugin, waits for wait, then reads
// the monitor's flag. There is no retry: a slow server reads as failure.
func ReloadTest(ctx context.Context, s Sender, m *Monitor, plugin string, wait time.Duration) (ReloadResult, error) {
	if wait <= 0 {
		wait = DefaultReloadWait
	}
	res := ReloadResult{Plugin: plugin, Waited: wait}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "reload.test", 0)
	defer span.End("")

	m.ArmReload()
	if err := s.Send(ReloadCommand(plugin)); err != nil {
		return res, fmt.Errorf("reload %s: %w", plugin, err)
	}

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return res, ctx.Err()
	case <-t.C:
	}

	res.Succeeded = m.ReloadSucceeded()
	span.WithExtra("succeeded", fmt.Sprint(res.Succeeded))
	return res, nil
}
