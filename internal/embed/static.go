package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// StaticProvider generates deterministic hash-based embeddings with
// no network or model dependency. Quality is reduced compared to a
// real model, but it keeps semantic search functional offline and
// makes tests reproducible.
type StaticProvider struct {
	mu     sync.RWMutex
	dim    int
	closed bool
}

// proseStopWords filters common English filler before hashing.
var proseStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"of": true, "to": true, "in": true, "on": true, "for": true,
	"with": true, "is": true, "are": true, "was": true, "be": true,
	"this": true, "that": true, "it": true, "as": true, "at": true,
}

const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// NewStaticProvider creates a static provider with the given
// dimension. Zero or negative falls back to StaticDimensions.
func NewStaticProvider(dim int) *StaticProvider {
	if dim <= 0 {
		dim = StaticDimensions
	}
	return &StaticProvider{dim: dim}
}

// Embed generates the embedding for a single text.
func (p *StaticProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	p.mu.RUnlock()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, p.dim), nil
	}

	return normalizeVector(p.generateVector(trimmed)), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (p *StaticProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (p *StaticProvider) Dimensions() int { return p.dim }

// ModelName returns the model identifier.
func (p *StaticProvider) ModelName() string { return "static-hash" }

// Available always reports true, the provider has no dependencies.
func (p *StaticProvider) Available(ctx context.Context) bool { return true }

// Close marks the provider closed.
func (p *StaticProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// generateVector hashes word tokens and character n-grams into a
// weighted bag-of-features vector.
func (p *StaticProvider) generateVector(text string) []float32 {
	vector := make([]float32, p.dim)

	for _, token := range tokenizeProse(text) {
		vector[hashToIndex(token, p.dim)] += tokenWeight
	}

	normalized := normalizeForNgrams(text)
	for _, ngram := range extractNgrams(normalized, ngramSize) {
		vector[hashToIndex(ngram, p.dim)] += ngramWeight
	}

	return vector
}

// tokenizeProse lowercases alphanumeric runs and drops stop words.
func tokenizeProse(text string) []string {
	var tokens []string
	for _, word := range tokenRegex.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if lower != "" && !proseStopWords[lower] {
			tokens = append(tokens, lower)
		}
	}
	return tokens
}

// normalizeForNgrams keeps only lowercased letters and digits.
func normalizeForNgrams(text string) string {
	var result strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// extractNgrams extracts n-character sliding windows.
func extractNgrams(text string, n int) []string {
	if len(text) < n {
		return nil
	}
	ngrams := make([]string, 0, len(text)-n+1)
	for i := 0; i <= len(text)-n; i++ {
		ngrams = append(ngrams, text[i:i+n])
	}
	return ngrams
}

// hashToIndex maps a feature to a vector index via FNV-1a.
func hashToIndex(s string, dim int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(dim))
}
