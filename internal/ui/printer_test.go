package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usesalt/wikigen/internal/catalog"
	"github.com/usesalt/wikigen/internal/indexer"
)

func TestTS01_SearchResultsPlainOutput(t *testing.T) {
	// Given a printer over a pipe writer
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	// When rendering chunked search results
	err := p.SearchResults("rollout", []indexer.SearchResult{
		{
			FilePath:     "/docs/deploy.md",
			FileName:     "deploy.md",
			ResourceName: "deploy",
			ChunkIndex:   2,
			Content:      "Rolling deployments replace pods gradually.",
			Score:        0.42,
		},
	})
	require.NoError(t, err)

	// Then the rendering carries the resource, path and snippet
	out := buf.String()
	assert.Contains(t, out, "deploy")
	assert.Contains(t, out, "/docs/deploy.md")
	assert.Contains(t, out, "Rolling deployments")
	assert.Contains(t, out, "dist 0.420")
}

func TestTS02_SearchResultsJSONOutput(t *testing.T) {
	// Given a printer in JSON mode
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	// When rendering results
	err := p.SearchResults("rollout", []indexer.SearchResult{
		{FilePath: "/docs/deploy.md", ResourceName: "deploy"},
	})
	require.NoError(t, err)

	// Then the output decodes as a JSON document with query and count
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "rollout", doc["query"])
	assert.Equal(t, float64(1), doc["count"])
}

func TestTS03_EmptyResultsRenderNotice(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	require.NoError(t, p.SearchResults("nothing", nil))
	assert.Contains(t, buf.String(), "no results")
}

func TestTS04_IndexSummaryCounts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	err := p.IndexSummary("/docs", catalog.IndexResult{Added: 3, Updated: 1, Skipped: 7})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "added")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "unchanged")
	assert.Contains(t, out, "7")
}

func TestTS05_StatsPlainAndDisabledSemantic(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	err := p.Stats(indexer.Stats{
		Stats: catalog.Stats{TotalFiles: 4, TotalSize: 2048, TotalDirectories: 2},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "semantic search disabled")
}

func TestTS06_FormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(1536*1024))
}
