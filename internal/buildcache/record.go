// Package buildcache remembers what the previous merge produced so a run can
// report which modules changed and whether the merged file is identical.
package buildcache

import (
	"crypto/sha256"
	"fmt"
	"time"

	"fortio.org/safecast"

	"plugmerge/internal/merge"
)

// schemaVersion is bumped whenever Record changes shape.
const schemaVersion uint16 = 1

// Digest is a sha256 sum.
type Digest [32]byte

// ModuleDigest fingerprints one source module as it was merged.
type ModuleDigest struct {
	Name  string
	Hash  Digest
	Lines uint32 // extracted body lines
}

// Record is the persisted summary of one merge.
type Record struct {
	Schema  uint16
	Modules []ModuleDigest
	Output  Digest
	Written time.Time
}

// FromBuild fingerprints a completed merge.
func FromBuild(reg *merge.Registry, out *merge.Output, now time.Time) (Record, error) {
	rec := Record{
		Schema:  schemaVersion,
		Output:  sha256.Sum256(out.Bytes()),
		Written: now.UTC(),
	}
	for _, mod := range reg.Modules() {
		n, err := safecast.Conv[uint32](len(mod.Body))
		if err != nil {
			return Record{}, fmt.Errorf("%s: body line count overflow: %w", mod.Name, err)
		}
		rec.Modules = append(rec.Modules, ModuleDigest{Name: mod.Name, Hash: mod.Hash, Lines: n})
	}
	return rec, nil
}

// Changes lists how the current merge differs from the previous one.
type Changes struct {
	Changed         []string
	Added           []string
	Removed         []string
	OutputUnchanged bool
}

// Empty reports whether no module changed.
func (c Changes) Empty() bool {
	return len(c.Changed) == 0 && len(c.Added) == 0 && len(c.Removed) == 0
}

// Compare reports differences from prev to cur. Module order follows cur,
// removed modules follow prev.
func Compare(prev, cur Record) Changes {
	before := make(map[string]Digest, len(prev.Modules))
	for _, m := range prev.Modules {
		before[m.Name] = m.Hash
	}
	var ch Changes
	seen := make(map[string]struct{}, len(cur.Modules))
	for _, m := range cur.Modules {
		seen[m.Name] = struct{}{}
		old, ok := before[m.Name]
		switch {
		case !ok:
			ch.Added = append(ch.Added, m.Name)
		case old != m.Hash:
			ch.Changed = append(ch.Changed, m.Name)
		}
	}
	for _, m := range prev.Modules {
		if _, ok := seen[m.Name]; !ok {
			ch.Removed = append(ch.Removed, m.Name)
		}
	}
	ch.OutputUnchanged = prev.Output == cur.Output
	return ch
}
