package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"plugmerge/internal/config"
)

var (
	initForce     bool
	initSourceDir string
	initPrimary   string
	initOutput    string
)

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing plugmerge.toml")
	initCmd.Flags().StringVar(&initSourceDir, "source-dir", "src", "directory holding the plugin modules")
	initCmd.Flags().StringVar(&initPrimary, "primary", "", "module hosting the others (default: first source found)")
	initCmd.Flags().StringVar(&initOutput, "output", "", "merged file (default: build/<primary>)")
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a plugmerge.toml",
	Long: `Create a plugmerge.toml in [path] (default: the current directory).
Every .cs file already present in the source directory is added to the
allow-list in name order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 && args[0] != "" {
			target = args[0]
		}
		return initProject(cmd.OutOrStdout(), target, initSourceDir, initPrimary, initOutput, initForce)
	},
}

func initProject(out io.Writer, target, sourceDir, primary, output string, force bool) error {
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	sources, err := discoverSources(filepath.Join(target, filepath.FromSlash(sourceDir)))
	if err != nil {
		return err
	}
	if primary == "" {
		if len(sources) > 0 {
			primary = sources[0]
		} else {
			primary = "Plugin.cs"
		}
	}
	if !slices.Contains(sources, primary) {
		sources = append([]string{primary}, sources...)
	}
	if output == "" {
		output = "build/" + primary
	}

	path, err := config.WriteStarter(target, config.Starter{
		SourceDir: sourceDir,
		Sources:   sources,
		Primary:   primary,
		Output:    output,
	}, force)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	fmt.Fprintf(out, "  primary: %s\n", primary)
	fmt.Fprintf(out, "  sources: %s\n", strings.Join(sources, ", "))
	return nil
}

// discoverSources lists the .cs files in dir; a missing dir yields none.
func discoverSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".cs") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}
