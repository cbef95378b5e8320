// Package cmd provides the CLI commands for wikigen.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/usesalt/wikigen/internal/config"
	"github.com/usesalt/wikigen/internal/indexer"
	"github.com/usesalt/wikigen/internal/logging"
	"github.com/usesalt/wikigen/internal/ui"
	"github.com/usesalt/wikigen/pkg/version"
)

// Persistent flags shared by all subcommands.
var (
	corpusDir  string
	jsonOutput bool
	debugMode  bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the wikigen CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikigen",
		Short: "Hybrid keyword and semantic search over markdown corpora",
		Long: `wikigen maintains a local search index over a directory of
markdown files. Keyword search runs on SQLite FTS5, semantic search
reranks matching files by embedding distance.

Run 'wikigen index' in a corpus directory to get started.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("wikigen version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&corpusDir, "dir", "d", ".", "Corpus directory")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newClearCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg.Level = "debug"
		logCfg.WriteToStderr = true
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		// Logging is observability, not a reason to refuse the command.
		return nil
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

// loadConfig resolves the corpus directory and loads the layered
// configuration for it.
func loadConfig() (*config.Config, string, error) {
	root, err := filepath.Abs(corpusDir)
	if err != nil {
		return nil, "", err
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return nil, "", fmt.Errorf("corpus directory %s does not exist", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

// openIndexer loads config and opens the indexer for the corpus.
// Callers own Close.
func openIndexer() (*indexer.Indexer, *config.Config, string, error) {
	cfg, root, err := loadConfig()
	if err != nil {
		return nil, nil, "", err
	}

	ix, err := indexer.New(indexer.OptionsFromConfig(cfg))
	if err != nil {
		return nil, nil, "", err
	}
	return ix, cfg, root, nil
}

func newPrinter(cmd *cobra.Command) *ui.Printer {
	return ui.NewPrinter(cmd.OutOrStdout(), jsonOutput)
}
