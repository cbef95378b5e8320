package cmd

import (
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Long:  `Show file, directory and chunk counts for the current index.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, _, _, err := openIndexer()
			if err != nil {
				return err
			}
			defer func() { _ = ix.Close() }()

			stats, err := ix.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return newPrinter(cmd).Stats(stats)
		},
	}
	return cmd
}
