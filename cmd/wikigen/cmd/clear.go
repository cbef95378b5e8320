package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire search index",
		Long: `Delete every catalog record and semantic chunk. The corpus
files on disk are untouched. Prompts for confirmation unless
--force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm(cmd, "Delete the entire index?") {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}

			ix, _, _, err := openIndexer()
			if err != nil {
				return err
			}
			defer func() { _ = ix.Close() }()

			if err := ix.Clear(cmd.Context()); err != nil {
				return err
			}
			return newPrinter(cmd).Cleared()
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
