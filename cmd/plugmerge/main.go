// Command plugmerge merges a multi-file Oxide plugin into the single file
// the server loads and drives the development loop against a test server.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"plugmerge/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "plugmerge",
	Short: "Merge plugin sources and test them against a development server",
	Long: `plugmerge flattens the allow-listed source modules of a plugin into one
file inside a single namespace, then optionally deploys it, asks the
development server to reload it, opens a remote console, or watches the
plugin's hook time.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
	RunE:              runRoot,
}

// main registers the subcommands and flags, then executes the root command.
// Any error exits with status 1.
func main() {
	rootCmd.Version = version.Coloured()

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("config", "", "path to plugmerge.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show merge phase timings")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 1024, "events kept in ring mode")

	// Флаги рабочего цикла; они не исключают друг друга
	rootCmd.Flags().Bool("TestRemoteReload", false, "reload the plugin on the development server and report whether it compiled")
	rootCmd.Flags().Bool("DeployTest", false, "run the deployment script after merging")
	rootCmd.Flags().Bool("OpenDevConsole", false, "open an interactive console on the development server (type exit to close)")
	rootCmd.Flags().Bool("WatchHookTimes", false, "poll the plugin listing and track the hook time")
	rootCmd.Flags().Bool("watch", false, "rebuild when an allow-listed source changes")
	rootCmd.Flags().String("ui", "auto", "hook-time monitor UI (auto|on|off)")

	err := rootCmd.Execute()
	finishTracing(err)
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
