package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit       int
	directory   string
	keywordOnly bool
	perFile     int
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed corpus",
		Long: `Search the indexed corpus with hybrid retrieval: keyword
narrowing over file metadata, then semantic reranking of chunks
within matching files.

Examples:
  wikigen search "rollback procedure"
  wikigen search "incident response" --limit 5
  wikigen search "api keys" --directory runbooks --keyword-only`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			ix, _, _, err := openIndexer()
			if err != nil {
				return err
			}
			defer func() { _ = ix.Close() }()

			slog.Info("search_started",
				slog.String("query", query),
				slog.Int("limit", opts.limit))

			p := newPrinter(cmd)
			if opts.keywordOnly {
				records, err := ix.Search(cmd.Context(), query, opts.limit, opts.directory)
				if err != nil {
					return err
				}
				return p.FileResults(query, records)
			}

			results, err := ix.SearchSemantic(cmd.Context(), query, opts.limit, opts.directory, opts.perFile)
			if err != nil {
				return err
			}
			return p.SearchResults(query, results)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringVar(&opts.directory, "directory", "", "Restrict results to a directory substring")
	cmd.Flags().BoolVar(&opts.keywordOnly, "keyword-only", false, "Skip semantic reranking")
	cmd.Flags().IntVar(&opts.perFile, "per-file", 0, "Maximum chunks per file (default 5)")

	return cmd
}
