package chunk

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EmptyInput(t *testing.T) {
	c := NewChunker(Options{})
	assert.Nil(t, c.Chunk(""))
}

func TestChunk_ShortInputEmittedAsSoleChunk(t *testing.T) {
	// Given content shorter than the minimum fragment length
	c := NewChunker(Options{})
	content := "A tiny note."

	// When chunking
	chunks := c.Chunk(content)

	// Then the whole input survives as a single chunk
	require.Len(t, chunks, 1)
	assert.Equal(t, "A tiny note.", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].StartPos)
}

func TestChunk_DropsTinyFragments(t *testing.T) {
	// Given a document that produces a trailing fragment below the
	// minimum length
	c := NewChunker(Options{ChunkTokens: 50, OverlapTokens: 0})
	content := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10) + "\n\nEnd."

	chunks := c.Chunk(content)

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.GreaterOrEqual(t, len(ch.Content), minChunkChars)
	}
}

func TestChunk_NeverSplitsFencedCodeBlock(t *testing.T) {
	// Given a document whose size boundary lands inside a code block
	var b strings.Builder
	b.WriteString(strings.Repeat("Intro text about the build system. ", 10))
	b.WriteString("\n\n```go\n")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, "func helper%d() int { return %d }\n", i, i)
	}
	b.WriteString("```\n\n")
	b.WriteString(strings.Repeat("Closing remarks about usage. ", 10))
	content := b.String()

	blockStart := strings.Index(content, "```go")
	blockEnd := strings.Index(content[blockStart+5:], "```") + blockStart + 5 + 3

	// When chunking with a size smaller than the code block
	c := NewChunker(Options{ChunkTokens: 100, OverlapTokens: 10})
	chunks := c.Chunk(content)

	// Then no chunk boundary falls strictly inside the block
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.False(t, blockStart < ch.EndPos && ch.EndPos < blockEnd,
			"chunk ending at %d splits code block [%d, %d)", ch.EndPos, blockStart, blockEnd)
	}
}

func TestChunk_PrefersHeaderBoundaries(t *testing.T) {
	// Given two sections separated by a header near the size boundary
	section := strings.Repeat("Details about configuring the indexer for large corpora. ", 8)
	content := section + "\n## Second Section\n" + section

	c := NewChunker(Options{ChunkTokens: 120, OverlapTokens: 0})
	chunks := c.Chunk(content)

	// Then the first chunk ends at the header, not mid-sentence
	require.NotEmpty(t, chunks)
	assert.Equal(t, len(section), chunks[0].EndPos)
	assert.NotContains(t, chunks[0].Content, "## Second Section")
}

func TestChunk_SequentialIndices(t *testing.T) {
	content := strings.Repeat("Sentences that fill a paragraph with searchable words. ", 200)

	c := NewChunker(Options{ChunkTokens: 100, OverlapTokens: 10})
	chunks := c.Chunk(content)

	require.Greater(t, len(chunks), 2)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
	}
}

func TestChunk_OverlapBetweenAdjacentChunks(t *testing.T) {
	content := strings.Repeat("Overlapping windows preserve context across boundaries. ", 100)

	c := NewChunker(Options{ChunkTokens: 100, OverlapTokens: 25})
	chunks := c.Chunk(content)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i].StartPos, chunks[i-1].EndPos,
			"chunk %d should start before the previous chunk ends", i)
	}
}

func TestChunk_TerminatesOnPathologicalInput(t *testing.T) {
	// Given a long run with no whitespace or structure
	content := strings.Repeat("x", 50_000)

	c := NewChunker(Options{ChunkTokens: 100, OverlapTokens: 90})
	chunks := c.Chunk(content)

	// Then chunking terminates and every chunk advances
	require.NotEmpty(t, chunks)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].StartPos, chunks[i-1].StartPos)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	content := strings.Repeat("Deterministic output for identical input and parameters. ", 60)

	c := NewChunker(Options{ChunkTokens: 80, OverlapTokens: 8})
	first := c.Chunk(content)
	second := c.Chunk(content)

	assert.Equal(t, first, second)
}

func TestChunk_MultibyteTextStaysValidUTF8(t *testing.T) {
	// Given unbroken CJK text with no whitespace near any size cut
	content := strings.Repeat("漢", 3000)
	c := NewChunker(Options{ChunkTokens: 100, OverlapTokens: 10})

	// When chunking
	chunks := c.Chunk(content)
	require.NotEmpty(t, chunks)

	// Then every emitted span is valid UTF-8 and offsets are rune aligned
	for i, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Content), "chunk %d splits a rune", i)
		assert.True(t, utf8.RuneStart(content[ch.StartPos]), "chunk %d starts mid-rune", i)
	}
}
