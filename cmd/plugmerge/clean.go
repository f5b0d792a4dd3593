package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"plugmerge/internal/buildcache"
	"plugmerge/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the merged output and the build record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		cfg, err := config.Discover(path, ".")
		if err != nil {
			return err
		}
		return cleanProject(cmd.OutOrStdout(), cfg)
	},
}

func cleanProject(out io.Writer, cfg *config.Config) error {
	removed := 0
	output := cfg.OutputPath()
	switch err := os.Remove(output); {
	case err == nil:
		fmt.Fprintf(out, "removed %s\n", formatPathForOutput(cfg.Root, output))
		removed++
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to remove %q: %w", output, err)
	}

	state := cfg.StateDir()
	if _, err := os.Stat(state); err == nil {
		if err := buildcache.Open(state).Drop(); err != nil {
			return fmt.Errorf("failed to remove %q: %w", state, err)
		}
		fmt.Fprintf(out, "removed %s\n", formatPathForOutput(cfg.Root, state))
		removed++
	}
	if removed == 0 {
		fmt.Fprintln(out, "nothing to clean")
	}
	return nil
}
