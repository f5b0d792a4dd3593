package merge

import (
	"context"
	"strconv"

	"plugmerge/internal/observ"
	"plugmerge/internal/trace"
)

// BuildRequest is everything needed to produce the merged file.
type BuildRequest struct {
	Collect CollectRequest
	Layout  Layout
	Output  string // destination path; empty renders without writing
}

// BuildResult describes one completed merge.
type BuildResult struct {
	Registry *Registry
	Output   *Output
	Timings  observ.Report
}

// Build collects, assembles and writes. Nothing is written unless both
// earlier stages succeed.
func Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeStage, "merge", 0)
	timer := observ.NewTimer()

	idx := timer.Begin("collect")
	reg, err := Collect(ctx, req.Collect)
	if err != nil {
		timer.End(idx, "failed")
		span.End("collect failed")
		return BuildResult{Timings: timer.Report()}, err
	}
	timer.End(idx, strconv.Itoa(1+len(reg.Others))+" modules")

	idx = timer.Begin("assemble")
	out, err := Assemble(reg, req.Layout)
	if err != nil {
		timer.End(idx, "failed")
		trace.Error(tracer, trace.ScopeStage, "assemble", err)
		span.End("assemble failed")
		return BuildResult{Registry: reg, Timings: timer.Report()}, err
	}
	timer.End(idx, strconv.Itoa(len(out.Bytes()))+" bytes")

	if req.Output != "" {
		idx = timer.Begin("write")
		if err := Write(req.Output, out); err != nil {
			timer.End(idx, "failed")
			span.End("write failed")
			return BuildResult{Registry: reg, Output: out, Timings: timer.Report()}, err
		}
		timer.End(idx, "")
	}

	span.WithExtra("bytes", strconv.Itoa(len(out.Bytes()))).End("")
	return BuildResult{Registry: reg, Output: out, Timings: timer.Report()}, nil
}
