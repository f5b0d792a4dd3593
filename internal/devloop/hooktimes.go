package devloop

import (
	"context"
	"fmt"
	"time"

	"plugmerge/internal/trace"
)

const (
	DefaultListingCommand = "oxide.plugins"
	DefaultListingEvery   = time.Second
)

// WatchHookTimes sends command every interval until ctx is done. It does
// not look at the replies; the Monitor picks them up from the receive loop.
// A send failure stops the watch and is returned.
func WatchHookTimes(ctx context.Context, s Sender, command string, interval time.Duration) error {
	if command == "" {
		command = DefaultListingCommand
	}
	if interval <= 0 {
		interval = DefaultListingEvery
	}
	tracer := trace.FromContext(ctx)

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if err := s.Send(command); err != nil {
				trace.Error(tracer, trace.ScopeStage, "hooktimes.send", err)
				return fmt.Errorf("hook-time watch: %w", err)
			}
		}
	}
}
