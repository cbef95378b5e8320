package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider_Deterministic(t *testing.T) {
	// Given: the same text embedded twice
	p := NewStaticProvider(0)
	defer p.Close()

	first, err := p.Embed(context.Background(), "hybrid search over markdown")
	require.NoError(t, err)
	second, err := p.Embed(context.Background(), "hybrid search over markdown")
	require.NoError(t, err)

	// Then: the embeddings are identical
	assert.Equal(t, first, second)
}

func TestStaticProvider_OutputIsUnitLength(t *testing.T) {
	p := NewStaticProvider(64)
	defer p.Close()

	emb, err := p.Embed(context.Background(), "some searchable document text")
	require.NoError(t, err)
	require.Len(t, emb, 64)

	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestStaticProvider_EmptyTextIsZeroVector(t *testing.T) {
	p := NewStaticProvider(16)
	defer p.Close()

	emb, err := p.Embed(context.Background(), "   ")
	require.NoError(t, err)

	assert.Equal(t, make([]float32, 16), emb)
}

func TestStaticProvider_SimilarTextsAreCloser(t *testing.T) {
	// Given: two related texts and one unrelated
	p := NewStaticProvider(0)
	defer p.Close()

	ctx := context.Background()
	auth1, err := p.Embed(ctx, "authentication login token session")
	require.NoError(t, err)
	auth2, err := p.Embed(ctx, "login authentication session handling")
	require.NoError(t, err)
	other, err := p.Embed(ctx, "database vacuum checkpoint compaction")
	require.NoError(t, err)

	// Then: shared vocabulary lands closer in L2
	assert.Less(t, l2(auth1, auth2), l2(auth1, other))
}

func TestStaticProvider_EmbedBatch(t *testing.T) {
	p := NewStaticProvider(0)
	defer p.Close()

	texts := []string{"first chunk", "second chunk", "third chunk"}
	embeddings, err := p.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, embeddings, 3)
	single, err := p.Embed(context.Background(), "second chunk")
	require.NoError(t, err)
	assert.Equal(t, single, embeddings[1])
}

func TestStaticProvider_ClosedFails(t *testing.T) {
	p := NewStaticProvider(0)
	require.NoError(t, p.Close())

	_, err := p.Embed(context.Background(), "text")
	assert.Error(t, err)
}

func TestStaticProvider_Metadata(t *testing.T) {
	p := NewStaticProvider(0)
	defer p.Close()

	assert.Equal(t, StaticDimensions, p.Dimensions())
	assert.Equal(t, "static-hash", p.ModelName())
	assert.True(t, p.Available(context.Background()))
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return sum
}
