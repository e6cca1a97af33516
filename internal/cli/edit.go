package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/figwatch/internal/config"
	"github.com/hupe1980/figwatch/internal/figures"
	"github.com/hupe1980/figwatch/internal/logging"
	"github.com/hupe1980/figwatch/internal/roots"
)

func newEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [root|figure.svg]",
		Short: "Edit an existing figure",
		Long: `Edit opens a figure for editing and registers its directory as a
watch root.

Given a directory (default: the current working directory), a selection
dialog over its figures is shown, newest first. Given an SVG file, it is
opened directly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args)
		},
	}

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	paths := config.PathsFromContext(ctx)
	logger := logging.FromContext(ctx)

	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	store := roots.NewStore(paths.RootsFile)
	mgr := figures.NewManager(paths, store, cfg.Editor, logger)

	opened, err := mgr.Edit(target)
	if err != nil {
		return err
	}

	if !opened {
		logger.Debug("figure selection cancelled")
	}

	return nil
}
