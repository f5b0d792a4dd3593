package merge

import (
	"strings"

	"plugmerge/internal/source"
)

// Module is one source file with its wrapping block removed.
type Module struct {
	Name string
	Hash [32]byte
	Raw  []string
	Body []string
}

// NewModule extracts the body of a loaded file.
func NewModule(f *source.File, keyword string) Module {
	raw := f.Lines()
	return Module{
		Name: f.Name,
		Hash: f.Hash,
		Raw:  raw,
		Body: Extract(raw, keyword),
	}
}

// Empty reports whether the file had no wrapping block.
func (m Module) Empty() bool {
	return len(m.Body) == 0
}

// Text joins the body lines.
func (m Module) Text() string {
	return strings.Join(m.Body, "")
}

// EndsWithCloser reports whether the body's last two characters are "}\n",
// i.e. the body closes the type it declares.
func (m Module) EndsWithCloser() bool {
	return strings.HasSuffix(m.Text(), "}\n")
}

// Registry is the set of modules taking part in one merge. The primary is
// held apart from the rest so a registry without it cannot be built.
type Registry struct {
	Primary Module
	Others  []Module
	// Dropped lists allow-listed files present on disk without a wrapping block.
	Dropped []string
	// Skipped lists files in the source directory outside the allow-list.
	Skipped []string
	// Absent lists allow-listed files not found on disk.
	Absent []string
}

// NewRegistry checks that primary is populated before accepting it.
func NewRegistry(primary Module, others []Module) (*Registry, error) {
	if primary.Empty() {
		return nil, missingPrimary(primary.Name)
	}
	return &Registry{Primary: primary, Others: others}, nil
}

// Modules returns the primary followed by the others.
func (r *Registry) Modules() []Module {
	out := make([]Module, 0, 1+len(r.Others))
	out = append(out, r.Primary)
	return append(out, r.Others...)
}
