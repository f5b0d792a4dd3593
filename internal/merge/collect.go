package merge

import (
	"context"
	"fmt"
	"strconv"

	"plugmerge/internal/source"
	"plugmerge/internal/trace"
)

// CollectRequest names the files taking part in a merge.
type CollectRequest struct {
	Dir     string
	Allow   []string // ordered allow-list
	Primary string
	Keyword string
}

// Collect reads every allow-listed file present in Dir, extracts its body and
// builds a Registry with the others in allow-list order. It fails with
// ErrMissingPrimaryModule when the primary is absent or has an empty body.
func Collect(ctx context.Context, req CollectRequest) (*Registry, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeStage, "collect", 0)

	found, skipped, err := source.Scan(req.Dir, req.Allow)
	if err != nil {
		span.End("scan failed")
		return nil, err
	}
	for _, name := range skipped {
		trace.Point(tracer, trace.ScopeModule, "skip", name+": not in allow-list")
	}

	files := source.NewFileSet()
	var (
		primary Module
		others  []Module
		dropped []string
		absent  []string
	)
	for _, name := range req.Allow {
		if err := ctx.Err(); err != nil {
			span.End("cancelled")
			return nil, err
		}
		path, ok := found[name]
		if !ok {
			trace.Point(tracer, trace.ScopeModule, "absent", name)
			absent = append(absent, name)
			continue
		}
		id, err := files.Load(path)
		if err != nil {
			span.End("read failed")
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		mod := NewModule(files.Get(id), req.Keyword)
		mod.Name = name
		trace.Point(tracer, trace.ScopeModule, "module:"+name, strconv.Itoa(len(mod.Body))+" lines")

		if mod.Empty() {
			trace.Point(tracer, trace.ScopeModule, "drop", name+": no "+req.Keyword+" block")
			dropped = append(dropped, name)
			if name == req.Primary {
				primary = mod
			}
			continue
		}
		if name == req.Primary {
			primary = mod
			continue
		}
		others = append(others, mod)
	}

	if primary.Name == "" {
		primary.Name = req.Primary
	}
	reg, err := NewRegistry(primary, others)
	if err != nil {
		trace.Error(tracer, trace.ScopeStage, "collect", err)
		span.End("missing primary")
		return nil, err
	}
	reg.Dropped = dropped
	reg.Skipped = skipped
	reg.Absent = absent
	span.WithExtra("modules", strconv.Itoa(1+len(others))).End("")
	return reg, nil
}

func missingPrimary(name string) error {
	return fmt.Errorf("%w: %s is absent or has no wrapping block", ErrMissingPrimaryModule, name)
}
