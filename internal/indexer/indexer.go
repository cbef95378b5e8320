// Package indexer composes the catalog, chunker, embedding provider
// and vector store into the hybrid index/search facade.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/usesalt/wikigen/internal/catalog"
	"github.com/usesalt/wikigen/internal/chunk"
	"github.com/usesalt/wikigen/internal/config"
	"github.com/usesalt/wikigen/internal/embed"
	wgerrors "github.com/usesalt/wikigen/internal/errors"
	"github.com/usesalt/wikigen/internal/scanner"
	"github.com/usesalt/wikigen/internal/vector"
)

// queryCacheSize bounds the query embedding cache.
const queryCacheSize = 256

// Indexer is the hybrid search orchestrator. Catalog and vector
// store each carry their own coarse lock; the indexer itself spawns
// no concurrency, so every call is synchronous for its caller.
type Indexer struct {
	catalog  *catalog.Catalog
	vectors  *vector.FlatIndex
	provider embed.Provider
	chunker  *chunk.Chunker

	semantic   bool
	lock       *flock.Flock
	queryCache *lru.Cache[string, []float32]
}

// Options configures indexer construction.
type Options struct {
	// DataDir holds catalog.db, vectors.gob and the writer lock.
	DataDir string
	// Semantic enables the embedding and vector store path.
	Semantic bool
	// ChunkTokens and OverlapTokens configure the chunker.
	ChunkTokens   int
	OverlapTokens int
	// Embeddings configures the embedding provider.
	Embeddings embed.Config
	// CacheSize overrides the query embedding cache capacity.
	CacheSize int
}

// OptionsFromConfig builds indexer options from the loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DataDir:       cfg.Paths.DataDir,
		Semantic:      cfg.Search.Semantic,
		ChunkTokens:   cfg.Index.ChunkSize,
		OverlapTokens: cfg.Index.ChunkOverlap,
		CacheSize:     cfg.Embeddings.CacheSize,
		Embeddings: embed.Config{
			Provider:    cfg.Embeddings.Provider,
			Model:       cfg.Embeddings.Model,
			Dimensions:  cfg.Embeddings.Dimensions,
			BatchSize:   cfg.Embeddings.BatchSize,
			OllamaHost:  cfg.Embeddings.OllamaHost,
			OpenAIModel: cfg.Embeddings.OpenAIModel,
		},
	}
}

// New opens the indexer over the data directory. The directory is
// guarded by a file lock: concurrent writer processes sharing the
// same index files would corrupt state, so a second process is
// refused outright.
func New(opts Options) (*Indexer, error) {
	if opts.DataDir == "" {
		return nil, wgerrors.New(wgerrors.ErrCodeConfigInvalid, "data directory not set", nil)
	}
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodePersistenceFailed, err)
	}

	lock := flock.New(filepath.Join(opts.DataDir, "wikigen.lock"))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodeIndexLocked, err)
	}
	if !acquired {
		return nil, wgerrors.New(wgerrors.ErrCodeIndexLocked,
			fmt.Sprintf("index at %s is in use by another process", opts.DataDir), nil)
	}

	cat, err := catalog.New(filepath.Join(opts.DataDir, "catalog.db"))
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	idx := &Indexer{
		catalog:  cat,
		semantic: opts.Semantic,
		lock:     lock,
		chunker: chunk.NewChunker(chunk.Options{
			ChunkTokens:   opts.ChunkTokens,
			OverlapTokens: opts.OverlapTokens,
		}),
	}

	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = queryCacheSize
	}
	idx.queryCache, err = lru.New[string, []float32](cacheSize)
	if err != nil {
		_ = cat.Close()
		_ = lock.Unlock()
		return nil, wgerrors.Wrap(wgerrors.ErrCodeInternal, err)
	}

	if opts.Semantic {
		dim := opts.Embeddings.Dimensions
		vectors, vErr := vector.New(filepath.Join(opts.DataDir, "vectors.gob"), dim)
		if vErr != nil {
			_ = cat.Close()
			_ = lock.Unlock()
			return nil, vErr
		}
		idx.vectors = vectors

		emb := opts.Embeddings
		idx.provider = embed.NewLazyProvider(dim, emb.Model, func() (embed.Provider, error) {
			return embed.NewProvider(emb)
		})
	}

	return idx, nil
}

// Close releases the catalog, the provider and the writer lock.
func (ix *Indexer) Close() error {
	var firstErr error
	if err := ix.catalog.Close(); err != nil {
		firstErr = err
	}
	if ix.provider != nil {
		if err := ix.provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := ix.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// IndexDirectory scans root, upserts catalog metadata, and re-chunks
// and re-embeds every added or updated file. The vector store is
// persisted once per scan; that persistence failure is raised, while
// a chunking or embedding failure for a single file is logged and
// leaves the file catalogued without semantic chunks.
func (ix *Indexer) IndexDirectory(ctx context.Context, root string, opts scanner.Options) (catalog.IndexResult, error) {
	result, changed, err := ix.catalog.IndexDirectory(ctx, root, opts)
	if err != nil {
		return catalog.IndexResult{}, err
	}

	slog.Info("directory_indexed",
		slog.String("root", root),
		slog.Int("added", result.Added),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped))

	if !ix.semantic || ix.vectors == nil || len(changed) == 0 {
		return result, nil
	}

	for _, path := range changed {
		if err := ix.indexFileChunks(ctx, path); err != nil {
			slog.Warn("chunk_indexing_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	if err := ix.vectors.Save(); err != nil {
		return result, err
	}

	return result, nil
}

// indexFileChunks chunks one file, embeds all its chunks in a single
// batched call and replaces its vectors.
func (ix *Indexer) indexFileChunks(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return wgerrors.Wrap(wgerrors.ErrCodeFileUnreadable, err)
	}

	chunks := ix.chunker.Chunk(string(content))
	if len(chunks) == 0 {
		// A file edited down to nothing must not keep serving its
		// old chunks.
		ix.vectors.RemoveFile(path)
		return nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}

	embeddings, err := ix.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return wgerrors.Wrap(wgerrors.ErrCodeEmbeddingFailed, err)
	}

	return ix.vectors.AddChunks(path, chunks, embeddings)
}

// Search runs a keyword search over the catalog.
func (ix *Indexer) Search(ctx context.Context, query string, limit int, directoryFilter string) ([]catalog.FileRecord, error) {
	return ix.catalog.Search(ctx, query, limit, directoryFilter)
}

// SearchSemantic runs the two-stage hybrid retrieval: keyword
// narrowing over the catalog, then vector rerank within the
// candidate files. When the semantic path is disabled or fails, it
// degrades to keyword search instead of raising.
func (ix *Indexer) SearchSemantic(ctx context.Context, query string, limit int, directoryFilter string, maxChunksPerFile int) ([]SearchResult, error) {
	if !ix.semantic || ix.vectors == nil {
		return ix.keywordFallback(ctx, query, limit, directoryFilter)
	}
	if maxChunksPerFile <= 0 {
		maxChunksPerFile = defaultMaxChunksPerFile
	}

	// Stage 1: narrow candidates by keyword match. An empty keyword
	// result must not starve recall, a semantic query may share no
	// tokens with any filename.
	candidates, err := ix.catalog.Search(ctx, query, defaultCandidateLimit, directoryFilter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates, err = ix.catalog.AllFiles(ctx, directoryFilter)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, nil
		}
	}

	// Stage 2: embed the query and rerank within candidates.
	queryEmbedding, err := ix.embedQuery(ctx, query)
	if err != nil {
		slog.Warn("query_embedding_failed",
			slog.String("error", err.Error()))
		return ix.keywordFallback(ctx, query, limit, directoryFilter)
	}

	filePaths := make([]string, len(candidates))
	byPath := make(map[string]catalog.FileRecord, len(candidates))
	for i, c := range candidates {
		filePaths[i] = c.FilePath
		byPath[c.FilePath] = c
	}

	hits, err := ix.vectors.Search(queryEmbedding, limit*2, filePaths)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, limit)
	perFile := make(map[string]int)
	for _, hit := range hits {
		meta := hit.Metadata
		if perFile[meta.FilePath] >= maxChunksPerFile {
			continue
		}
		rec, ok := byPath[meta.FilePath]
		if !ok {
			continue
		}
		perFile[meta.FilePath]++

		results = append(results, SearchResult{
			FilePath:     meta.FilePath,
			FileName:     rec.FileName,
			ResourceName: rec.ResourceName,
			Directory:    rec.Directory,
			ChunkIndex:   meta.ChunkIndex,
			Content:      meta.Content,
			StartPos:     meta.StartPos,
			EndPos:       meta.EndPos,
			Score:        hit.Distance,
		})
		if len(results) >= limit {
			break
		}
	}

	return results, nil
}

// keywordFallback serves the semantic contract from the catalog
// alone.
func (ix *Indexer) keywordFallback(ctx context.Context, query string, limit int, directoryFilter string) ([]SearchResult, error) {
	records, err := ix.catalog.Search(ctx, query, limit, directoryFilter)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(records))
	for i, rec := range records {
		results[i] = SearchResult{
			FilePath:     rec.FilePath,
			FileName:     rec.FileName,
			ResourceName: rec.ResourceName,
			Directory:    rec.Directory,
		}
	}
	return results, nil
}

// embedQuery embeds a query string, memoizing recent queries.
func (ix *Indexer) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if cached, ok := ix.queryCache.Get(query); ok {
		return cached, nil
	}

	embedding, err := ix.provider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	ix.queryCache.Add(query, embedding)
	return embedding, nil
}

// RemoveDirectory removes every indexed file under root from the
// catalog and tombstones its chunks in the vector store.
func (ix *Indexer) RemoveDirectory(ctx context.Context, root string) (int, error) {
	removed, paths, err := ix.catalog.RemoveDirectory(ctx, root)
	if err != nil {
		return 0, err
	}

	if ix.vectors != nil {
		for _, path := range paths {
			ix.vectors.RemoveFile(path)
		}
		if err := ix.vectors.Save(); err != nil {
			return removed, err
		}
	}

	slog.Info("directory_removed",
		slog.String("root", root),
		slog.Int("removed", removed))
	return removed, nil
}

// Clear empties the catalog, the FTS projection and the vector
// store.
func (ix *Indexer) Clear(ctx context.Context) error {
	if err := ix.catalog.Clear(ctx); err != nil {
		return err
	}

	if ix.vectors != nil {
		ix.vectors.Clear()
		if err := ix.vectors.Save(); err != nil {
			return err
		}
	}
	ix.queryCache.Purge()
	return nil
}

// Stats reports combined catalog and vector store statistics.
func (ix *Indexer) Stats(ctx context.Context) (Stats, error) {
	catStats, err := ix.catalog.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Stats:                 catStats,
		SemanticSearchEnabled: ix.semantic && ix.vectors != nil,
	}
	if ix.vectors != nil {
		vs := ix.vectors.Stats()
		stats.TotalChunks = vs.TotalChunks
		stats.IndexSize = vs.IndexSize
		stats.EmbeddingDim = vs.EmbeddingDim
	}
	return stats, nil
}
