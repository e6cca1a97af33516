package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/figwatch/internal/config"
	"github.com/hupe1980/figwatch/internal/roots"
)

func newRootsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roots",
		Short: "List the watched figure directories",
		Long: `Roots prints the directories the watch daemon monitors: the persisted
root list plus the current working directory, which is always watched.

A running watch daemon picks up changes to the root list immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := config.PathsFromContext(cmd.Context())
			store := roots.NewStore(paths.RootsFile)

			dirs, err := store.List()
			if err != nil {
				return err
			}

			for _, dir := range dirs {
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}

			return nil
		},
	}

	cmd.AddCommand(newRootsAddCommand())

	return cmd
}

func newRootsAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <dir>",
		Short: "Register a directory as a watch root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := config.PathsFromContext(cmd.Context())
			store := roots.NewStore(paths.RootsFile)

			return store.Add(args[0])
		},
	}
}
