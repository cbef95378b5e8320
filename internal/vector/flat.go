// Package vector provides an exact nearest-neighbor store over chunk
// embeddings with provenance metadata.
//
// Vectors live in a flat slice where a chunk's id is its row
// position; every lookup dereferences through the metadata map.
// Removing a file only deletes its metadata entries, so its vectors
// stay physically stored but unreachable. Reclaiming that space
// requires a full rebuild.
package vector

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/usesalt/wikigen/internal/chunk"
	wgerrors "github.com/usesalt/wikigen/internal/errors"
)

// FlatIndex is an exact L2 similarity index. One mutex guards the
// vectors, the metadata map and the id counter together.
type FlatIndex struct {
	mu   sync.Mutex
	path string
	dim  int

	vectors      [][]float32
	metadata     map[int]ChunkMetadata
	fileToChunks map[string][]int
	nextChunkID  int
}

// flatState is the persisted form of everything but the vectors.
type flatState struct {
	Dim          int
	Metadata     map[int]ChunkMetadata
	FileToChunks map[string][]int
	NextChunkID  int
}

// New creates a flat index persisted at path, with vectors of the
// given dimension. Existing state is loaded when present; a stored
// dimension that disagrees with dim discards the state and starts
// empty rather than failing.
func New(path string, dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, wgerrors.ValidationError(
			fmt.Sprintf("embedding dimension must be positive, got %d", dim), nil)
	}

	idx := &FlatIndex{path: path, dim: dim}
	idx.reset()

	if err := idx.load(); err != nil {
		slog.Warn("vector_index_load_failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		idx.reset()
	}

	return idx, nil
}

// reset reinitializes the in-memory state. Caller holds the lock or
// owns the index exclusively.
func (idx *FlatIndex) reset() {
	idx.vectors = nil
	idx.metadata = make(map[int]ChunkMetadata)
	idx.fileToChunks = make(map[string][]int)
	idx.nextChunkID = 0
}

// AddChunks replaces the stored chunks for filePath with the given
// chunks and embeddings. Existing chunks for the file are tombstoned
// first. Fails when chunk and embedding counts disagree or an
// embedding has the wrong width.
func (idx *FlatIndex) AddChunks(filePath string, chunks []chunk.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return wgerrors.ValidationError(
			fmt.Sprintf("chunk count %d does not match embedding count %d",
				len(chunks), len(embeddings)), nil)
	}
	for i, emb := range embeddings {
		if len(emb) != idx.dim {
			return wgerrors.New(wgerrors.ErrCodeDimensionMismatch,
				fmt.Sprintf("embedding %d has dimension %d, expected %d", i, len(emb), idx.dim), nil)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeFileLocked(filePath)

	chunkIDs := make([]int, 0, len(chunks))
	for i, ch := range chunks {
		id := idx.nextChunkID
		idx.nextChunkID++

		idx.vectors = append(idx.vectors, embeddings[i])
		idx.metadata[id] = ChunkMetadata{
			FilePath:   filePath,
			ChunkIndex: ch.Index,
			Content:    ch.Content,
			StartPos:   ch.StartPos,
			EndPos:     ch.EndPos,
		}
		chunkIDs = append(chunkIDs, id)
	}
	idx.fileToChunks[filePath] = chunkIDs

	return nil
}

// Search returns up to k chunks nearest to the query embedding in
// ascending distance order. The 2k nearest raw rows are fetched so
// tombstoned and filtered entries can be dropped without starving
// the result. When fileFilter is non-nil, only chunks from those
// files are returned, capped at a few per file for diversity.
func (idx *FlatIndex) Search(query []float32, k int, fileFilter []string) ([]Result, error) {
	if len(query) != idx.dim {
		return nil, wgerrors.New(wgerrors.ErrCodeDimensionMismatch,
			fmt.Sprintf("query has dimension %d, expected %d", len(query), idx.dim), nil)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(idx.vectors) == 0 || k <= 0 {
		return nil, nil
	}

	type candidate struct {
		id   int
		dist float32
	}
	candidates := make([]candidate, len(idx.vectors))
	for i, v := range idx.vectors {
		candidates[i] = candidate{id: i, dist: squaredL2(query, v)}
	}
	sort.Slice(candidates, func(a, b int) bool {
		return candidates[a].dist < candidates[b].dist
	})

	overfetch := k * 2
	if overfetch > len(candidates) {
		overfetch = len(candidates)
	}

	var allowed map[string]bool
	if fileFilter != nil {
		allowed = make(map[string]bool, len(fileFilter))
		for _, p := range fileFilter {
			allowed[p] = true
		}
	}

	var results []Result
	perFile := make(map[string]int)

	for _, cand := range candidates[:overfetch] {
		meta, ok := idx.metadata[cand.id]
		if !ok {
			// Tombstoned row.
			continue
		}
		if allowed != nil {
			if !allowed[meta.FilePath] {
				continue
			}
			if perFile[meta.FilePath] >= defaultMaxChunksPerFile {
				continue
			}
			perFile[meta.FilePath]++
		}

		results = append(results, Result{
			ChunkID:  cand.id,
			Distance: cand.dist,
			Metadata: meta,
		})
		if len(results) >= k {
			break
		}
	}

	return results, nil
}

// RemoveFile tombstones all chunks of a file. The vectors remain in
// the flat slice but can no longer be returned.
func (idx *FlatIndex) RemoveFile(filePath string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeFileLocked(filePath)
}

func (idx *FlatIndex) removeFileLocked(filePath string) {
	ids, ok := idx.fileToChunks[filePath]
	if !ok {
		return
	}
	for _, id := range ids {
		delete(idx.metadata, id)
	}
	delete(idx.fileToChunks, filePath)
}

// Clear discards all stored chunks and vectors.
func (idx *FlatIndex) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.reset()
}

// Save persists the vectors and the metadata sidecar atomically via
// temp file and rename. A failure here is raised, never swallowed.
func (idx *FlatIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return wgerrors.PersistenceError("failed to create index directory", err)
	}

	if err := writeGob(idx.path, idx.vectors); err != nil {
		return wgerrors.PersistenceError("failed to save vector index", err)
	}
	state := flatState{
		Dim:          idx.dim,
		Metadata:     idx.metadata,
		FileToChunks: idx.fileToChunks,
		NextChunkID:  idx.nextChunkID,
	}
	if err := writeGob(idx.metaPath(), state); err != nil {
		return wgerrors.PersistenceError("failed to save vector metadata", err)
	}

	return nil
}

// load restores persisted state. Missing files mean a fresh start. A
// dimension mismatch discards the stored state with a warning.
func (idx *FlatIndex) load() error {
	if idx.path == "" {
		return nil
	}
	if _, err := os.Stat(idx.path); os.IsNotExist(err) {
		return nil
	}
	if _, err := os.Stat(idx.metaPath()); os.IsNotExist(err) {
		return nil
	}

	var vectors [][]float32
	if err := readGob(idx.path, &vectors); err != nil {
		return fmt.Errorf("decode vectors: %w", err)
	}

	var state flatState
	if err := readGob(idx.metaPath(), &state); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}

	if state.Dim != idx.dim {
		return fmt.Errorf("stored dimension %d does not match configured %d", state.Dim, idx.dim)
	}

	idx.vectors = vectors
	idx.metadata = state.Metadata
	idx.fileToChunks = state.FileToChunks
	idx.nextChunkID = state.NextChunkID
	if idx.metadata == nil {
		idx.metadata = make(map[int]ChunkMetadata)
	}
	if idx.fileToChunks == nil {
		idx.fileToChunks = make(map[string][]int)
	}

	return nil
}

// Stats reports chunk, file and raw row counts.
func (idx *FlatIndex) Stats() Stats {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	return Stats{
		TotalChunks:          len(idx.metadata),
		TotalFilesWithChunks: len(idx.fileToChunks),
		IndexSize:            len(idx.vectors),
		EmbeddingDim:         idx.dim,
	}
}

func (idx *FlatIndex) metaPath() string {
	return idx.path + ".meta"
}

// squaredL2 returns the squared Euclidean distance between two
// equal-length vectors.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// writeGob encodes v into path atomically.
func writeGob(path string, v any) error {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(v); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("encode: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// readGob decodes path into v.
func readGob(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	return gob.NewDecoder(file).Decode(v)
}
