// Package ui renders command output for interactive terminals and
// machine consumers.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/usesalt/wikigen/internal/catalog"
	"github.com/usesalt/wikigen/internal/indexer"
)

// snippetLimit caps the rendered chunk excerpt length.
const snippetLimit = 200

// Printer writes command results to a terminal or a pipe. JSON mode
// emits one document per call for machine consumers.
type Printer struct {
	out    io.Writer
	styles Styles
	json   bool
}

// NewPrinter builds a printer for the writer. Color is dropped when
// the writer is not a terminal, when NO_COLOR is set, or when
// running under CI.
func NewPrinter(out io.Writer, jsonMode bool) *Printer {
	noColor := jsonMode || !IsTTY(out) || DetectNoColor() || DetectCI()
	return &Printer{
		out:    out,
		styles: GetStyles(noColor),
		json:   jsonMode,
	}
}

// IsTTY checks if the writer is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

// SearchResults renders hybrid search results.
func (p *Printer) SearchResults(query string, results []indexer.SearchResult) error {
	if p.json {
		return p.writeJSON(map[string]any{
			"query":   query,
			"count":   len(results),
			"results": results,
		})
	}

	if len(results) == 0 {
		fmt.Fprintln(p.out, p.styles.Dim.Render("no results for "+quoted(query)))
		return nil
	}

	fmt.Fprintf(p.out, "%s %s\n\n",
		p.styles.Header.Render(fmt.Sprintf("%d results for", len(results))),
		p.styles.Title.Render(quoted(query)))

	for i, r := range results {
		fmt.Fprintf(p.out, "%s %s",
			p.styles.Label.Render(fmt.Sprintf("%2d.", i+1)),
			p.styles.Title.Render(r.ResourceName))
		if r.Content != "" {
			fmt.Fprintf(p.out, " %s", p.styles.Score.Render(fmt.Sprintf("(chunk %d, dist %.3f)", r.ChunkIndex, r.Score)))
		}
		fmt.Fprintln(p.out)
		fmt.Fprintf(p.out, "    %s\n", p.styles.Dim.Render(r.FilePath))
		if r.Content != "" {
			fmt.Fprintf(p.out, "    %s\n", p.styles.Snippet.Render(snippet(r.Content)))
		}
		fmt.Fprintln(p.out)
	}
	return nil
}

// FileResults renders keyword-only search results.
func (p *Printer) FileResults(query string, records []catalog.FileRecord) error {
	if p.json {
		return p.writeJSON(map[string]any{
			"query":   query,
			"count":   len(records),
			"results": records,
		})
	}

	if len(records) == 0 {
		fmt.Fprintln(p.out, p.styles.Dim.Render("no results for "+quoted(query)))
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(p.out, "%s  %s\n",
			p.styles.Title.Render(rec.ResourceName),
			p.styles.Dim.Render(rec.FilePath))
	}
	return nil
}

// IndexSummary renders the outcome of an index run.
func (p *Printer) IndexSummary(root string, result catalog.IndexResult) error {
	if p.json {
		return p.writeJSON(map[string]any{
			"root":    root,
			"added":   result.Added,
			"updated": result.Updated,
			"skipped": result.Skipped,
		})
	}

	fmt.Fprintf(p.out, "%s %s\n",
		p.styles.Success.Render("indexed"),
		p.styles.Header.Render(root))
	fmt.Fprintf(p.out, "  %s %d  %s %d  %s %d\n",
		p.styles.Label.Render("added"), result.Added,
		p.styles.Label.Render("updated"), result.Updated,
		p.styles.Label.Render("unchanged"), result.Skipped)
	return nil
}

// Stats renders index statistics.
func (p *Printer) Stats(stats indexer.Stats) error {
	if p.json {
		return p.writeJSON(stats)
	}

	fmt.Fprintln(p.out, p.styles.Header.Render("index statistics"))
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("files"), stats.TotalFiles)
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("directories"), stats.TotalDirectories)
	fmt.Fprintf(p.out, "  %s %s\n", p.styles.Label.Render("total size"), formatBytes(stats.TotalSize))
	if stats.SemanticSearchEnabled {
		fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("chunks"), stats.TotalChunks)
		fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("embedding dim"), stats.EmbeddingDim)
	} else {
		fmt.Fprintf(p.out, "  %s\n", p.styles.Dim.Render("semantic search disabled"))
	}
	return nil
}

// Removed renders the outcome of a remove run.
func (p *Printer) Removed(root string, count int) error {
	if p.json {
		return p.writeJSON(map[string]any{"root": root, "removed": count})
	}
	fmt.Fprintf(p.out, "%s %d files under %s\n",
		p.styles.Success.Render("removed"), count, p.styles.Header.Render(root))
	return nil
}

// Cleared confirms the index was emptied.
func (p *Printer) Cleared() error {
	if p.json {
		return p.writeJSON(map[string]any{"cleared": true})
	}
	fmt.Fprintln(p.out, p.styles.Success.Render("index cleared"))
	return nil
}

// Errorf renders an error line to the writer.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Error.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func snippet(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if len(s) > snippetLimit {
		s = s[:snippetLimit] + "..."
	}
	return s
}

func quoted(query string) string {
	return "\"" + query + "\""
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
