package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/usesalt/wikigen/internal/scanner"
)

func newIndexCmd() *cobra.Command {
	var pattern string
	var maxDepth int
	var includeHidden bool

	cmd := &cobra.Command{
		Use:   "index [directory]",
		Short: "Index a directory of markdown files",
		Long: `Index a directory into the corpus catalog. Unchanged files are
skipped, changed files are rehashed, rechunked and reembedded.

Examples:
  wikigen index
  wikigen index ./docs
  wikigen index ./docs --pattern "*.markdown" --max-depth 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				corpusDir = args[0]
			}

			ix, cfg, root, err := openIndexer()
			if err != nil {
				return err
			}
			defer func() { _ = ix.Close() }()

			opts := scanner.Options{
				Pattern:       cfg.Index.Pattern,
				ExcludeHidden: cfg.Index.ExcludeHidden && !includeHidden,
				MaxDepth:      cfg.Index.MaxDepth,
				MaxFileSize:   int64(cfg.Index.MaxFileSizeKB) * 1024,
			}
			if pattern != "" {
				opts.Pattern = pattern
			}
			if maxDepth > 0 {
				opts.MaxDepth = maxDepth
			}

			result, err := ix.IndexDirectory(cmd.Context(), root, opts)
			if err != nil {
				slog.Error("index_failed", slog.String("error", err.Error()))
				return err
			}

			return newPrinter(cmd).IndexSummary(root, result)
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Glob pattern for file names (default from config)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum directory depth (0 = unlimited)")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Index hidden files and directories")

	return cmd
}
