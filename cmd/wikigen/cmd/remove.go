package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <directory>",
		Short: "Remove an indexed directory from the corpus",
		Long: `Remove every indexed file under a directory from the catalog
and the semantic index. Files on disk are untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			ix, _, _, err := openIndexer()
			if err != nil {
				return err
			}
			defer func() { _ = ix.Close() }()

			removed, err := ix.RemoveDirectory(cmd.Context(), target)
			if err != nil {
				return err
			}
			return newPrinter(cmd).Removed(target, removed)
		},
	}
	return cmd
}
