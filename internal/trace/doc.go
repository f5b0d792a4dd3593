// Package trace is the structured event stream of the plugmerge CLI.
//
// Every stage of a run (merge, deploy, session, workflows) reports through a
// Tracer carried on the context. Operator-facing output stays on stdout; the
// trace goes to stderr or a file and is meant for diagnosing slow merges and
// misbehaving RCON sessions.
//
// # Usage
//
//	plugmerge --trace=- --trace-level=detail --WatchHookTimes
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when a run fails
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only failures
//   - LevelPhase: command and stage boundaries
//   - LevelDetail: per-module merge events
//   - LevelDebug: everything, including every RCON frame
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeStage, "merge", 0)
//	defer span.End("")
package trace
