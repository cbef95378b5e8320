package vector

// ChunkMetadata records the provenance of one stored chunk.
type ChunkMetadata struct {
	FilePath   string
	ChunkIndex int
	Content    string
	StartPos   int
	EndPos     int
}

// Result is one search hit. Distance is squared L2, lower means more
// similar.
type Result struct {
	ChunkID  int
	Distance float32
	Metadata ChunkMetadata
}

// Stats summarizes the store contents. IndexSize counts raw vector
// rows including tombstoned ones, so it can exceed TotalChunks.
type Stats struct {
	TotalChunks          int `json:"total_chunks"`
	TotalFilesWithChunks int `json:"total_files_with_chunks"`
	IndexSize            int `json:"index_size"`
	EmbeddingDim         int `json:"embedding_dim"`
}

// defaultMaxChunksPerFile caps hits per file during filtered search
// to preserve diversity across files.
const defaultMaxChunksPerFile = 5
