package indexer

import "github.com/usesalt/wikigen/internal/catalog"

// SearchResult is one hybrid search hit. For keyword-only results
// the chunk fields are zero and Score is 0.
type SearchResult struct {
	FilePath     string  `json:"file_path"`
	FileName     string  `json:"file_name"`
	ResourceName string  `json:"resource_name"`
	Directory    string  `json:"directory"`
	ChunkIndex   int     `json:"chunk_index"`
	Content      string  `json:"content,omitempty"`
	StartPos     int     `json:"start_pos"`
	EndPos       int     `json:"end_pos"`
	Score        float32 `json:"score"`
}

// Stats combines catalog and vector store statistics.
type Stats struct {
	catalog.Stats
	SemanticSearchEnabled bool `json:"semantic_search_enabled"`
	TotalChunks           int  `json:"total_chunks,omitempty"`
	IndexSize             int  `json:"index_size,omitempty"`
	EmbeddingDim          int  `json:"embedding_dim,omitempty"`
}

const (
	// candidateLimit caps the keyword candidate set fed into the
	// vector rerank stage.
	defaultCandidateLimit = 50

	// defaultMaxChunksPerFile caps hits per file in hybrid results.
	defaultMaxChunksPerFile = 5
)
