package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Starter describes the values substituted into a fresh manifest.
type Starter struct {
	SourceDir string
	Sources   []string
	Primary   string
	Output    string
}

// Render produces the text of a new plugmerge.toml.
func (s Starter) Render() string {
	quoted := make([]string, len(s.Sources))
	for i, name := range s.Sources {
		quoted[i] = strconv.Quote(name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, `# plugmerge project manifest

[merge]
source_dir = %q
# Only these files are merged, in this order. The primary hosts the others.
sources = [%s]
primary = %q
output = %q
namespace = "Oxide.Plugins"
keyword = "namespace"
header = "// Generated by plugmerge. Do not edit."
# reopen: strip the primary's closing brace so the other modules nest inside it
# wrapper-only: keep the primary closed and only close the namespace
closing = "reopen"

[rcon]
host = "127.0.0.1"
port = 28016
# password = ""   # or set %s
poll_interval = "5s"

[reload]
# success_phrase = "<plugin> was compiled successfully"
wait = "2s"

[watch]
command = "oxide.plugins"
listing_marker = "Listing"
interval = "1s"

[deploy]
script = "./DeployTest.sh"
`, s.SourceDir, strings.Join(quoted, ", "), s.Primary, s.Output, PasswordEnv)
	return b.String()
}

// WriteStarter creates dir/plugmerge.toml; it refuses to overwrite unless force is set.
func WriteStarter(dir string, s Starter, force bool) (string, error) {
	path := filepath.Join(dir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(s.Render()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", path, err)
	}
	return path, nil
}
