// Package chunk splits markdown documents into overlapping,
// structure-aware spans for indexing.
//
// The chunker prefers breaking at markdown structure over raw size:
// header boundaries first, then paragraph breaks, then sentence ends,
// then word boundaries. Fenced code blocks are never split. Chunking
// is a pure function of its input, so repeated runs over the same
// content produce identical spans.
package chunk

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Options configures the markdown chunker behavior.
type Options struct {
	// ChunkTokens is the target chunk size in approximate tokens.
	ChunkTokens int
	// OverlapTokens is the overlap between adjacent chunks.
	OverlapTokens int
}

// Chunker splits markdown text into structure-aware chunks.
type Chunker struct {
	charSize    int
	charOverlap int
}

var (
	// Matches fenced code blocks, lazily to the closing fence.
	codeBlockPattern = regexp.MustCompile("(?s)```.*?```")

	// Matches a header line boundary: newline followed by # markers.
	headerPattern = regexp.MustCompile(`\n#{1,6}\s+`)

	// Matches a paragraph break (one or more blank lines).
	paragraphPattern = regexp.MustCompile(`\n\n+`)

	// Matches a sentence end followed by whitespace.
	sentencePattern = regexp.MustCompile(`[.!?]\s+`)

	// Matches any run of whitespace.
	wordPattern = regexp.MustCompile(`\s+`)
)

// NewChunker creates a chunker with the given options. Zero fields
// fall back to the defaults.
func NewChunker(opts Options) *Chunker {
	if opts.ChunkTokens <= 0 {
		opts.ChunkTokens = DefaultChunkTokens
	}
	if opts.OverlapTokens < 0 {
		opts.OverlapTokens = DefaultOverlapTokens
	}
	return &Chunker{
		charSize:    opts.ChunkTokens * charsPerToken,
		charOverlap: opts.OverlapTokens * charsPerToken,
	}
}

// Chunk splits content into ordered, overlapping chunks. Fragments
// shorter than the minimum length are dropped, unless the entire
// input fits in a single short chunk.
func (c *Chunker) Chunk(content string) []Chunk {
	if content == "" {
		return nil
	}

	codeBlocks := codeBlockPattern.FindAllStringIndex(content, -1)

	var chunks []Chunk
	pos := 0
	index := 0

	for pos < len(content) {
		end := min(pos+c.charSize, len(content))

		if end < len(content) {
			end = c.findBreak(content, pos, end)
			if end < pos {
				// Break-point search windows can reach behind pos for
				// tiny chunk sizes. Emit nothing and let the progress
				// clamp advance.
				end = pos
			}
		}

		// A break inside a fenced code block extends to the block end.
		for _, cb := range codeBlocks {
			if cb[0] < end && end < cb[1] {
				end = cb[1]
				break
			}
		}

		text := strings.TrimSpace(content[pos:end])
		wholeInput := pos == 0 && end >= len(content)
		if text != "" && (len(text) >= minChunkChars || wholeInput) {
			chunks = append(chunks, Chunk{
				Content:  text,
				StartPos: pos,
				EndPos:   end,
				Index:    index,
			})
			index++
		}

		if end >= len(content) {
			break
		}

		// Overlap the next chunk, but always advance by at least half
		// a chunk so pathological inputs cannot stall the loop.
		minProgress := c.charSize / 2
		next := end - c.charOverlap
		if next-pos < minProgress {
			next = pos + minProgress
		}
		for next < len(content) && !utf8.RuneStart(content[next]) {
			next++
		}
		pos = next
	}

	return chunks
}

// findBreak searches near the size boundary for the best break point,
// preferring headers, then paragraphs, then sentences, then words.
func (c *Chunker) findBreak(content string, pos, end int) int {
	if m := headerPattern.FindStringIndex(content[pos:clamp(end+100, len(content))]); m != nil {
		return pos + m[0]
	}

	lo := clamp(end-200, len(content))
	hi := clamp(end+100, len(content))
	if m := paragraphPattern.FindStringIndex(content[lo:hi]); m != nil {
		return lo + m[1]
	}

	lo = clamp(end-100, len(content))
	hi = clamp(end+50, len(content))
	if m := sentencePattern.FindStringIndex(content[lo:hi]); m != nil {
		return lo + m[1]
	}

	lo = clamp(end-50, len(content))
	hi = clamp(end+50, len(content))
	if m := wordPattern.FindStringIndex(content[lo:hi]); m != nil {
		return lo + m[1]
	}

	// Raw size cut. The structural breaks above always land on
	// ASCII boundaries, but this one can split a multibyte rune.
	for end > pos && !utf8.RuneStart(content[end]) {
		end--
	}
	return end
}

// clamp bounds an offset to [0, n].
func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
