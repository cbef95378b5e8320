package chunk

// Default chunking parameters, expressed in approximate tokens.
const (
	// DefaultChunkTokens is the target chunk size.
	DefaultChunkTokens = 500
	// DefaultOverlapTokens is the overlap between adjacent chunks.
	DefaultOverlapTokens = 50

	// charsPerToken is the character-per-token approximation used to
	// convert token budgets into byte spans.
	charsPerToken = 4

	// minChunkChars drops fragments too small to be useful, except
	// when the whole input is below the threshold.
	minChunkChars = 100
)

// Chunk is a bounded, contiguous span of a source document.
type Chunk struct {
	// Content is the trimmed chunk text.
	Content string
	// StartPos and EndPos are byte offsets into the source text.
	StartPos int
	EndPos   int
	// Index is the 0-based, sequential position of this chunk
	// within its file.
	Index int
}
