package source

import (
	"path/filepath"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

// SplitLines splits content into lines that keep their trailing "\n".
// A final line without a terminator is kept as-is.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := make([]string, 0, 64)
	start := 0
	for i, b := range content {
		if b == '\n' {
			lines = append(lines, string(content[start:i+1]))
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, string(content[start:]))
	}
	return lines
}

// CanonicalName folds a file name to NFC so names listed by a filesystem that
// stores decomposed Unicode (macOS) still match the allow-list.
func CanonicalName(name string) string {
	return norm.NFC.String(filepath.Base(name))
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
