// Package cli implements the cobra command tree for figwatch.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/figwatch/internal/config"
	"github.com/hupe1980/figwatch/internal/logging"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile   string
		configDir string
	)

	cmd := &cobra.Command{
		Use:   "figwatch",
		Short: "Watch figure directories and convert vector sources for LaTeX",
		Long: `figwatch monitors directories of vector figures and recompiles them
into embeddable PDF + PDF_TEX pairs whenever a source changes.

A background daemon watches every registered figure directory. When an
SVG (or Affinity Designer) source settles after a save, Inkscape exports
the artifact and the matching \incfig include snippet is placed on the
clipboard, ready to paste into a document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.Setup(cfg)

			paths, err := resolvePaths(configDir)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			if err := paths.Ensure(); err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = config.NewContextWithPaths(ctx, paths)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("configDir", paths.ConfigDir),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .figwatch.yaml)")
	pf.StringVar(&configDir, "config-dir", "", "data directory (default: ~/.config/figwatch)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.String("log-file", "", "write logs to this rotating file instead of stderr")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	// Register subcommands.
	cmd.AddCommand(
		newVersionCommand(),
		newWatchCommand(),
		newCreateCommand(),
		newEditCommand(),
		newRootsCommand(),
		newCompletionCommand(),
	)

	return cmd
}

// resolvePaths returns the figwatch paths, honoring a --config-dir
// override.
func resolvePaths(configDir string) (*config.Paths, error) {
	if configDir != "" {
		return config.PathsIn(configDir), nil
	}

	return config.DefaultPaths()
}
