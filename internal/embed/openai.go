package embed

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	wgerrors "github.com/usesalt/wikigen/internal/errors"
)

// DefaultOpenAIModel is the default OpenAI embedding model.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIProvider embeds text via the OpenAI API. The API key is read
// from OPENAI_API_KEY.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAIProvider creates an OpenAI-backed provider.
func NewOpenAIProvider(model string) (*OpenAIProvider, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, wgerrors.New(wgerrors.ErrCodeConfigInvalid,
			"OPENAI_API_KEY environment variable not set", nil)
	}

	if model == "" {
		model = DefaultOpenAIModel
	}

	dim := 1536
	if model == "text-embedding-3-large" {
		dim = 3072
	}

	return &OpenAIProvider{
		client: openai.NewClient(key),
		model:  model,
		dim:    dim,
	}, nil
}

// Embed generates an embedding for a single text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: texts,
	})
	if err != nil {
		return nil, wgerrors.Wrap(wgerrors.ErrCodeEmbeddingFailed, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, wgerrors.New(wgerrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)), nil)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		embeddings[i] = normalizeVector(vec)
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension for the model.
func (p *OpenAIProvider) Dimensions() int { return p.dim }

// ModelName returns the model identifier.
func (p *OpenAIProvider) ModelName() string { return "openai-" + p.model }

// Available reports whether the provider can serve requests. The key
// was already validated at construction, so this is a cheap check.
func (p *OpenAIProvider) Available(ctx context.Context) bool {
	return p.client != nil
}

// Close releases resources. The OpenAI client holds none.
func (p *OpenAIProvider) Close() error { return nil }
