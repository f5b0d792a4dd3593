package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build fingerprints for the plugmerge CLI, set with
// -ldflags "-X plugmerge/internal/version.Number=1.0.0 -X ...".
var (
	// Number is the semantic version, optionally with a pre-release suffix.
	Number = "0.3.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var partColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Coloured renders Number with major, minor and patch in their own colours.
// The pre-release or build suffix is left plain.
func Coloured() string {
	core, suffix := Number, ""
	if i := strings.IndexAny(Number, "-+"); i >= 0 {
		core, suffix = Number[:i], Number[i:]
	}
	parts := strings.Split(core, ".")
	for i, p := range parts {
		if i < len(partColors) {
			parts[i] = partColors[i].Sprint(p)
		}
	}
	return strings.Join(parts, ".") + suffix
}
