package embed

import (
	"context"
	"sync"
)

// LazyProvider defers construction of an underlying provider until
// the first embedding call. Construction happens exactly once and
// the result is shared by every caller; after initialization the
// provider has no mutable state, so no further locking is needed on
// the call path.
type LazyProvider struct {
	once      sync.Once
	construct func() (Provider, error)
	provider  Provider
	err       error

	dim   int
	model string
}

// NewLazyProvider wraps a provider constructor. dim and model
// describe the provider without forcing construction.
func NewLazyProvider(dim int, model string, construct func() (Provider, error)) *LazyProvider {
	return &LazyProvider{
		construct: construct,
		dim:       dim,
		model:     model,
	}
}

func (p *LazyProvider) init() (Provider, error) {
	p.once.Do(func() {
		p.provider, p.err = p.construct()
	})
	return p.provider, p.err
}

// Embed forces initialization and embeds a single text.
func (p *LazyProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	provider, err := p.init()
	if err != nil {
		return nil, err
	}
	return provider.Embed(ctx, text)
}

// EmbedBatch forces initialization and embeds multiple texts.
func (p *LazyProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	provider, err := p.init()
	if err != nil {
		return nil, err
	}
	return provider.EmbedBatch(ctx, texts)
}

// Dimensions returns the configured dimension without initializing.
func (p *LazyProvider) Dimensions() int { return p.dim }

// ModelName returns the configured model without initializing.
func (p *LazyProvider) ModelName() string { return p.model }

// Available initializes the provider and probes it.
func (p *LazyProvider) Available(ctx context.Context) bool {
	provider, err := p.init()
	if err != nil {
		return false
	}
	return provider.Available(ctx)
}

// Close closes the underlying provider if it was ever constructed.
func (p *LazyProvider) Close() error {
	if p.provider != nil {
		return p.provider.Close()
	}
	return nil
}
