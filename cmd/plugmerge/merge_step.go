package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"plugmerge/internal/buildcache"
	"plugmerge/internal/config"
	"plugmerge/internal/devloop"
	"plugmerge/internal/merge"
	"plugmerge/internal/trace"
)

func buildRequest(cfg *config.Config) (merge.BuildRequest, error) {
	header, err := cfg.HeaderText()
	if err != nil {
		return merge.BuildRequest{}, err
	}
	closing, err := merge.ParseClosing(cfg.Merge.Closing)
	if err != nil {
		return merge.BuildRequest{}, err
	}
	return merge.BuildRequest{
		Collect: merge.CollectRequest{
			Dir:     cfg.SourceDir(),
			Allow:   cfg.Merge.Sources,
			Primary: cfg.Merge.Primary,
			Keyword: cfg.Merge.Keyword,
		},
		Layout: merge.Layout{
			Header:    header,
			Namespace: cfg.Merge.Namespace,
			Closing:   closing,
		},
		Output: cfg.OutputPath(),
	}, nil
}

// runMerge builds the merged file, reports what changed since the last
// merge and records this one.
func runMerge(ctx context.Context, out io.Writer, cfg *config.Config, timings bool) (merge.BuildResult, error) {
	fmt.Fprintln(out, "Merging source files...")
	req, err := buildRequest(cfg)
	if err != nil {
		return merge.BuildResult{}, err
	}
	res, err := merge.Build(ctx, req)
	if err != nil {
		return res, fmt.Errorf("merge: %w", err)
	}

	reg := res.Registry
	for _, name := range reg.Absent {
		warnColor.Fprintf(out, "warning: %s is allow-listed but missing from %s\n", name, formatPathForOutput(cfg.Root, req.Collect.Dir))
	}
	for _, name := range reg.Dropped {
		warnColor.Fprintf(out, "warning: %s has no %s block and was left out\n", name, cfg.Merge.Keyword)
	}
	reportChanges(ctx, out, cfg, res)
	okColor.Fprintf(out, "merged %d modules into %s\n", len(reg.Modules()), formatPathForOutput(cfg.Root, req.Output))

	if timings {
		if err := res.Timings.WriteSummary(out); err != nil {
			return res, err
		}
	}
	return res, nil
}

// reportChanges compares against the stored build record. Record problems
// are warnings: they never fail a merge that already succeeded.
func reportChanges(ctx context.Context, out io.Writer, cfg *config.Config, res merge.BuildResult) {
	tracer := trace.FromContext(ctx)
	cache := buildcache.Open(cfg.StateDir())

	cur, err := buildcache.FromBuild(res.Registry, res.Output, time.Now())
	if err != nil {
		warnColor.Fprintf(out, "warning: build record: %v\n", err)
		return
	}
	prev, ok, err := cache.Get()
	if err != nil {
		trace.Error(tracer, trace.ScopeStage, "buildcache.get", err)
	}
	if ok {
		fmt.Fprintln(out, describeChanges(buildcache.Compare(prev, cur)))
	}
	if err := cache.Put(cur); err != nil {
		warnColor.Fprintf(out, "warning: build record: %v\n", err)
	}
}

func describeChanges(ch buildcache.Changes) string {
	if ch.Empty() {
		if ch.OutputUnchanged {
			return "no source changes since the last merge"
		}
		return "sources unchanged, output differs from the last merge"
	}
	var parts []string
	if len(ch.Changed) > 0 {
		parts = append(parts, "changed "+strings.Join(ch.Changed, ", "))
	}
	if len(ch.Added) > 0 {
		parts = append(parts, "added "+strings.Join(ch.Added, ", "))
	}
	if len(ch.Removed) > 0 {
		parts = append(parts, "removed "+strings.Join(ch.Removed, ", "))
	}
	return "since the last merge: " + strings.Join(parts, "; ")
}

func runDeploy(ctx context.Context, out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "Deploying to test server...")
	return devloop.Deploy(ctx, cfg.DeployScript(), cfg.Root, out)
}

func formatPathForOutput(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
