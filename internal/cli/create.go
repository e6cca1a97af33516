package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/figwatch/internal/config"
	"github.com/hupe1980/figwatch/internal/figures"
	"github.com/hupe1980/figwatch/internal/latex"
	"github.com/hupe1980/figwatch/internal/logging"
	"github.com/hupe1980/figwatch/internal/roots"
)

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <title> [root]",
		Short: "Create a new figure from the template",
		Long: `Create stamps a new SVG figure named after the title into the figure
directory (default: the current working directory), registers that
directory as a watch root, opens the figure in the editor, and prints
the LaTeX include snippet.

The snippet is printed with the same leading indentation as the title
argument, so editor plugins can substitute it in place. If a figure with
the same name already exists, the title is echoed back with a "2"
suffix instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args)
		},
	}

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	paths := config.PathsFromContext(ctx)
	logger := logging.FromContext(ctx)

	title := args[0]

	root := "."
	if len(args) == 2 {
		root = args[1]
	}

	store := roots.NewStore(paths.RootsFile)
	mgr := figures.NewManager(paths, store, cfg.Editor, logger)

	figPath, err := mgr.Create(title, root)
	if errors.Is(err, figures.ErrExists) {
		// Editor-plugin protocol: echo the title with a counter suffix so
		// the caller can retry under a fresh name.
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(title)+" 2")

		return nil
	}

	if err != nil {
		return err
	}

	snippet, err := latex.NewSnippet(cfg.SnippetTemplate)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	name := strings.TrimSuffix(filepath.Base(figPath), ".svg")

	rendered, err := snippet.Render(name, strings.TrimSpace(title))
	if err != nil {
		return err
	}

	// Mirror the indentation of the input so the output can replace the
	// line the title came from.
	leading := len(title) - len(strings.TrimLeft(title, " "))

	fmt.Fprintln(cmd.OutOrStdout(), latex.Indent(rendered, leading))

	return nil
}
