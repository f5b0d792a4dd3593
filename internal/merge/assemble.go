package merge

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Closing selects how the merged file is terminated.
type Closing uint8

const (
	// CloseReopen strips the primary's final "}\n" and writes "\t}\n}\n":
	// one line closes the reopened primary type, one closes the wrapper.
	CloseReopen Closing = iota
	// CloseWrapperOnly keeps the primary body intact and writes one "\t}\n".
	CloseWrapperOnly
)

// ParseClosing maps the manifest spelling to a Closing.
func ParseClosing(s string) (Closing, error) {
	switch s {
	case "", "reopen":
		return CloseReopen, nil
	case "wrapper-only":
		return CloseWrapperOnly, nil
	default:
		return CloseReopen, fmt.Errorf("invalid closing mode %q (expected reopen|wrapper-only)", s)
	}
}

// String returns the manifest spelling.
func (c Closing) String() string {
	if c == CloseWrapperOnly {
		return "wrapper-only"
	}
	return "reopen"
}

// Layout is the fixed frame written around the module bodies.
type Layout struct {
	Header    string
	Namespace string
	Closing   Closing
}

// Output is a fully rendered merged file.
type Output struct {
	data []byte
}

// Assemble renders reg into the merged file layout.
func Assemble(reg *Registry, layout Layout) (*Output, error) {
	if reg == nil || reg.Primary.Empty() {
		name := ""
		if reg != nil {
			name = reg.Primary.Name
		}
		return nil, missingPrimary(name)
	}
	if !reg.Primary.EndsWithCloser() {
		return nil, fmt.Errorf("%w: %s (closing mode %s)", ErrPrimaryNotReopenable, reg.Primary.Name, layout.Closing)
	}

	var buf bytes.Buffer
	buf.WriteString(layout.Header)
	buf.WriteString("\n")
	buf.WriteString("namespace ")
	buf.WriteString(layout.Namespace)
	buf.WriteString("\n{\n")

	primary := reg.Primary.Text()
	if layout.Closing == CloseReopen {
		primary = primary[:len(primary)-2]
	}
	buf.WriteString(primary)

	for _, mod := range reg.Others {
		buf.WriteString(mod.Text())
	}

	switch layout.Closing {
	case CloseReopen:
		buf.WriteString("\t}\n}\n")
	case CloseWrapperOnly:
		buf.WriteString("\t}\n")
	}
	return &Output{data: buf.Bytes()}, nil
}

// Bytes returns the rendered file.
func (o *Output) Bytes() []byte {
	return o.data
}

// String returns the rendered file as text.
func (o *Output) String() string {
	return string(o.data)
}

// Lines returns the rendered file split into lines without terminators.
func (o *Output) Lines() []string {
	return strings.Split(strings.TrimSuffix(string(o.data), "\n"), "\n")
}

// WriteTo implements io.WriterTo.
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(o.data)
	return int64(n), err
}

// Write overwrites path with the rendered file, creating parent directories.
func Write(path string, out *Output) error {
	if out == nil {
		return fmt.Errorf("nothing to write to %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, out.data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
