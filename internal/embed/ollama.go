package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	wgerrors "github.com/usesalt/wikigen/internal/errors"
)

const (
	// DefaultOllamaHost is the default Ollama API endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the default embedding model.
	DefaultOllamaModel = "nomic-embed-text"

	// ollamaConnectTimeout bounds the availability probe.
	ollamaConnectTimeout = 5 * time.Second
)

// OllamaConfig configures the Ollama provider.
type OllamaConfig struct {
	// Host is the Ollama API endpoint.
	Host string
	// Model is the embedding model name.
	Model string
	// Dimensions is the expected embedding width.
	Dimensions int
	// BatchSize is the number of texts per request.
	BatchSize int
	// Timeout bounds each embedding request.
	Timeout time.Duration
}

// OllamaProvider embeds text via a local Ollama server.
type OllamaProvider struct {
	config OllamaConfig
	client *http.Client
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewOllamaProvider creates an Ollama-backed provider. It does not
// probe the server; call Available to check readiness.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &OllamaProvider{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Embed generates an embedding for a single text.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.doEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, wgerrors.New(wgerrors.ErrCodeEmbeddingFailed,
			"ollama returned no embeddings", nil)
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts, splitting the
// work into configured batch sizes.
func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := p.doEmbed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}

	if len(results) != len(texts) {
		return nil, wgerrors.New(wgerrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(results)), nil)
	}
	return results, nil
}

func (p *OllamaProvider) doEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	var input any
	if len(texts) == 1 {
		input = texts[0]
	} else {
		input = texts
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: p.config.Model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.Host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodeNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, wgerrors.New(wgerrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding failed with status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var apiResult ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResult); err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodeEmbeddingFailed, err)
	}

	embeddings := make([][]float32, len(apiResult.Embeddings))
	for i, emb := range apiResult.Embeddings {
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		embeddings[i] = normalizeVector(vec)
	}
	return embeddings, nil
}

// Dimensions returns the configured embedding dimension.
func (p *OllamaProvider) Dimensions() int { return p.config.Dimensions }

// ModelName returns the model identifier.
func (p *OllamaProvider) ModelName() string { return p.config.Model }

// Available probes the Ollama server.
func (p *OllamaProvider) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, ollamaConnectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet,
		p.config.Host+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Close releases HTTP resources.
func (p *OllamaProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
