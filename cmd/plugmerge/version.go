package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"plugmerge/internal/version"
)

// buildInfo is what `plugmerge version` reports.
type buildInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit,omitempty"`
	Built    string `json:"built,omitempty"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

var (
	versionJSON    bool
	versionVerbose bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print machine-readable JSON")
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "include commit, build date and toolchain")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show plugmerge build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := currentBuildInfo(debug.ReadBuildInfo)
		if versionJSON {
			return writeVersionJSON(cmd.OutOrStdout(), info)
		}
		writeVersionText(cmd.OutOrStdout(), info, versionVerbose)
		return nil
	},
}

// currentBuildInfo prefers the ldflags fingerprints and falls back to the
// VCS stamp the go command embeds.
func currentBuildInfo(read func() (*debug.BuildInfo, bool)) buildInfo {
	info := buildInfo{
		Version:  version.Number,
		Commit:   version.GitCommit,
		Built:    version.BuildDate,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := read()
	if !ok || bi == nil {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Built == "" {
				info.Built = s.Value
			}
		case "vcs.modified":
			if s.Value == "true" && info.Commit != "" && info.Commit != version.GitCommit {
				info.Commit += "-dirty"
			}
		}
	}
	return info
}

func writeVersionText(out io.Writer, info buildInfo, verbose bool) {
	fmt.Fprintf(out, "plugmerge %s\n", version.Coloured())
	if !verbose {
		return
	}
	for _, row := range [][2]string{
		{"commit", info.Commit},
		{"built", info.Built},
		{"go", info.Go},
		{"platform", info.Platform},
	} {
		value := row[1]
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(out, "  %-9s %s\n", row[0]+":", value)
	}
}

func writeVersionJSON(out io.Writer, info buildInfo) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
