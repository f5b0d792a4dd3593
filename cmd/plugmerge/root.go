package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"plugmerge/internal/config"
	"plugmerge/internal/trace"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	infoColor = color.New(color.FgCyan)
)

var errReloadFailed = errors.New("plugin did not reload")

var (
	activeTracer = trace.Nop
	traceCleanup func()
)

type rootOptions struct {
	configPath string
	timings    bool
	reload     bool
	deploy     bool
	console    bool
	hookTimes  bool
	watch      bool
	ui         uiMode
}

// remote reports whether any workflow needs the development server.
func (o rootOptions) remote() bool {
	return o.reload || o.console || o.hookTimes
}

func preRun(cmd *cobra.Command, _ []string) error {
	colorValue, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	if err := applyColorMode(colorValue); err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	traceCleanup = cleanup
	activeTracer = trace.FromContext(cmd.Context())
	trace.Point(activeTracer, trace.ScopeCommand, cmd.CommandPath(), "")
	return nil
}

// finishTracing dumps the ring buffer when the command failed, then
// flushes and closes the tracer.
func finishTracing(cmdErr error) {
	if cmdErr != nil {
		trace.Error(activeTracer, trace.ScopeCommand, "command", cmdErr)
		if ring := ringOf(activeTracer); ring != nil {
			fmt.Fprintln(os.Stderr, "trace: last events")
			_ = ring.Dump(os.Stderr, trace.FormatText)
		}
	}
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}

func readRootOptions(cmd *cobra.Command) (rootOptions, error) {
	var opts rootOptions
	var err error
	if opts.configPath, err = cmd.Flags().GetString("config"); err != nil {
		return opts, err
	}
	if opts.timings, err = cmd.Flags().GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.reload, err = cmd.Flags().GetBool("TestRemoteReload"); err != nil {
		return opts, err
	}
	if opts.deploy, err = cmd.Flags().GetBool("DeployTest"); err != nil {
		return opts, err
	}
	if opts.console, err = cmd.Flags().GetBool("OpenDevConsole"); err != nil {
		return opts, err
	}
	if opts.hookTimes, err = cmd.Flags().GetBool("WatchHookTimes"); err != nil {
		return opts, err
	}
	if opts.watch, err = cmd.Flags().GetBool("watch"); err != nil {
		return opts, err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	return opts, nil
}

// runRoot always merges first; the workflow flags then run in a fixed
// order: deploy, reload test, console or hook-time watch.
func runRoot(cmd *cobra.Command, _ []string) error {
	opts, err := readRootOptions(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Discover(opts.configPath, ".")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if _, err := runMerge(ctx, out, cfg, opts.timings); err != nil {
		return err
	}
	if opts.deploy {
		if err := runDeploy(ctx, out, cfg); err != nil {
			return err
		}
	}
	if !opts.remote() && !opts.watch {
		return nil
	}
	return runSession(ctx, cmd, cfg, opts)
}
