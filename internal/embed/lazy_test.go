package embed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyProvider_ConstructsOnFirstUse(t *testing.T) {
	// Given: a lazy wrapper around a counted constructor
	var constructed atomic.Int32
	lazy := NewLazyProvider(StaticDimensions, "static-hash", func() (Provider, error) {
		constructed.Add(1)
		return NewStaticProvider(0), nil
	})

	// Then: metadata is served without construction
	assert.Equal(t, StaticDimensions, lazy.Dimensions())
	assert.Equal(t, "static-hash", lazy.ModelName())
	assert.Equal(t, int32(0), constructed.Load())

	// When: embedding for the first time
	_, err := lazy.Embed(context.Background(), "first call")
	require.NoError(t, err)
	assert.Equal(t, int32(1), constructed.Load())
}

func TestLazyProvider_ConstructsExactlyOnce(t *testing.T) {
	var constructed atomic.Int32
	lazy := NewLazyProvider(StaticDimensions, "static-hash", func() (Provider, error) {
		constructed.Add(1)
		return NewStaticProvider(0), nil
	})

	// When: many goroutines embed concurrently
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = lazy.Embed(context.Background(), fmt.Sprintf("text %d", n))
		}(i)
	}
	wg.Wait()

	// Then: construction ran exactly once
	assert.Equal(t, int32(1), constructed.Load())
}

func TestLazyProvider_ConstructionErrorIsSticky(t *testing.T) {
	lazy := NewLazyProvider(8, "broken", func() (Provider, error) {
		return nil, fmt.Errorf("model unavailable")
	})

	_, err := lazy.Embed(context.Background(), "text")
	require.Error(t, err)

	// A second call reports the same failure without retrying
	_, err = lazy.EmbedBatch(context.Background(), []string{"more"})
	assert.Error(t, err)
	assert.False(t, lazy.Available(context.Background()))
}

func TestNewProvider_SelectsStatic(t *testing.T) {
	p, err := NewProvider(Config{Provider: "static", Dimensions: 128})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 128, p.Dimensions())
	assert.Equal(t, "static-hash", p.ModelName())
}

func TestNewProvider_RejectsUnknown(t *testing.T) {
	_, err := NewProvider(Config{Provider: "word2vec"})
	assert.Error(t, err)
}
