package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"plugmerge/internal/config"
	"plugmerge/internal/devloop"
	"plugmerge/internal/health"
	"plugmerge/internal/rcon"
	"plugmerge/internal/trace"
)

// remote bundles the live connection and the classifier reading from it.
type remote struct {
	session *rcon.Session
	monitor *devloop.Monitor
}

// reloadStatus holds the outcome of the most recent reload test. Under
// --watch every rebuild overwrites it, so the exit code reflects the last
// reload rather than the first.
type reloadStatus struct {
	failed atomic.Bool
}

func (s *reloadStatus) record(ok bool) { s.failed.Store(!ok) }

func (s *reloadStatus) err() error {
	if s.failed.Load() {
		return errReloadFailed
	}
	return nil
}

// runSession runs the workflows that outlive the merge. Background tasks
// (receive loop, hook-time sender, source watcher) share one supervisor;
// the first of them to fail ends the session and its error wins.
func runSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts rootOptions) error {
	out := cmd.OutOrStdout()
	sup := devloop.NewSupervisor(ctx)
	useTUI := opts.hookTimes && !opts.console && shouldUseTUI(opts.ui)

	var (
		rc       *remote
		readings chan health.Reading
	)
	if opts.remote() {
		if err := cfg.ValidateRemote(); err != nil {
			_ = sup.Shutdown()
			return fmt.Errorf("%s: %w", cfg.Path, err)
		}
		var sink health.Sink
		if useTUI {
			readings = make(chan health.Reading, 64)
			sink = health.ChannelSink{Ch: readings}
		}
		var err error
		rc, err = connect(sup.Context(), out, cfg, sink)
		if err != nil {
			_ = sup.Shutdown()
			return err
		}
		sup.Go(func(ctx context.Context) error {
			return rc.session.Run(ctx, rc.monitor)
		})
		if opts.hookTimes {
			sup.Go(func(ctx context.Context) error {
				return devloop.WatchHookTimes(ctx, rc.session, cfg.Watch.Command, cfg.Watch.Interval.Duration)
			})
		}
	}

	var status reloadStatus
	if opts.watch {
		sw, err := devloop.NewSourceWatcher(cfg.SourceDir(), cfg.Merge.Sources, cfg.Watch.Debounce.Duration)
		if err != nil {
			_ = sup.Shutdown()
			return err
		}
		infoColor.Fprintf(out, "watching %s for changes\n", formatPathForOutput(cfg.Root, cfg.SourceDir()))
		sup.Go(func(ctx context.Context) error {
			return sw.Run(ctx, func(ctx context.Context, changed []string) {
				rebuild(ctx, out, cfg, opts, rc, &status, changed)
			})
		})
	}

	var fgErr error
	if opts.reload {
		ok, err := runReloadTest(sup.Context(), out, cfg, rc)
		fgErr = err
		status.record(ok)
	}

	var bgErr error
	switch {
	case fgErr != nil:
		bgErr = sup.Shutdown()
	case opts.console:
		fmt.Fprintln(out, "Opening development RCON console on remote. Enter `exit` to close.")
		fgErr = devloop.Console(sup.Context(), cmd.InOrStdin(), out, rc.session)
		bgErr = sup.Shutdown()
	case useTUI:
		fgErr = runMonitorUI(sup.Context(), cfg.PluginName()+" hook time", readings)
		bgErr = sup.Shutdown()
	case opts.hookTimes || opts.watch:
		// Runs until interrupted or a background task fails.
		bgErr = sup.Wait()
	default:
		bgErr = sup.Shutdown()
	}

	switch {
	case bgErr != nil:
		return bgErr
	case fgErr != nil && !errors.Is(fgErr, context.Canceled):
		return fgErr
	}
	return status.err()
}

func connect(ctx context.Context, out io.Writer, cfg *config.Config, sink health.Sink) (*remote, error) {
	ep := rcon.Endpoint{Host: cfg.RCON.Host, Port: cfg.RCON.Port, Password: cfg.RCON.Password}
	tracer := trace.FromContext(ctx)
	fmt.Fprintf(out, "Connecting via %s\n", ep.Redacted())

	session, err := rcon.Dial(ctx, ep, rcon.Options{
		PollInterval: cfg.RCON.PollInterval.Duration,
		Tracer:       tracer,
	})
	if err != nil {
		return nil, err
	}
	mopts := devloop.MonitorOptions{
		SuccessPhrase: cfg.ReloadPhrase(),
		ListingMarker: cfg.Watch.ListingMarker,
		Out:           out,
		Sink:          sink,
		Tracer:        tracer,
	}
	if sink != nil {
		// the TUI owns the terminal
		mopts.Out = io.Discard
		mopts.QuietReadings = true
	}
	return &remote{session: session, monitor: devloop.NewMonitor(mopts)}, nil
}

func runReloadTest(ctx context.Context, out io.Writer, cfg *config.Config, rc *remote) (bool, error) {
	fmt.Fprintln(out, "Checking if the plugin compiles/reloads...")
	res, err := devloop.ReloadTest(ctx, rc.session, rc.monitor, cfg.PluginName(), cfg.Reload.Wait.Duration)
	if err != nil {
		return false, err
	}
	if res.Succeeded {
		okColor.Fprintln(out, "Successfully reloaded plugin on remote server.")
	} else {
		failColor.Fprintln(out, "Failed to reload plugin.")
	}
	return res.Succeeded, nil
}

// rebuild reruns the merge after a source change, then redeploys and
// reloads when those workflows were requested. Failures are reported and
// watching continues.
func rebuild(ctx context.Context, out io.Writer, cfg *config.Config, opts rootOptions, rc *remote, status *reloadStatus, changed []string) {
	infoColor.Fprintf(out, "\nchanged: %s\n", strings.Join(changed, ", "))
	if _, err := runMerge(ctx, out, cfg, opts.timings); err != nil {
		failColor.Fprintf(out, "%v\n", err)
		return
	}
	if opts.deploy {
		if err := runDeploy(ctx, out, cfg); err != nil {
			failColor.Fprintf(out, "%v\n", err)
			return
		}
	}
	if opts.reload && rc != nil {
		ok, err := runReloadTest(ctx, out, cfg, rc)
		if err != nil {
			if ctx.Err() == nil {
				failColor.Fprintf(out, "%v\n", err)
			}
			return
		}
		status.record(ok)
	}
}
