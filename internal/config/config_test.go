package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "*.md", cfg.Index.Pattern)
	assert.True(t, cfg.Index.ExcludeHidden)
	assert.Equal(t, 500, cfg.Index.ChunkSize)
	assert.Equal(t, 50, cfg.Index.ChunkOverlap)
	assert.True(t, cfg.Search.Semantic)
	assert.Equal(t, 50, cfg.Search.CandidateLimit)
	assert.Equal(t, 5, cfg.Search.PerFileLimit)
	assert.Equal(t, "http://localhost:11434", cfg.Embeddings.OllamaHost)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ProjectConfigOverridesDefaults(t *testing.T) {
	// Given a corpus directory with a project config and no user config
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	yaml := `
index:
  pattern: "*.markdown"
  chunk_size: 300
search:
  max_results: 25
embeddings:
  provider: static
  dimensions: 64
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".wikigen.yaml"), []byte(yaml), 0o644))

	// When loading
	cfg, err := Load(dir)
	require.NoError(t, err)

	// Then overridden fields change and the rest keep defaults
	assert.Equal(t, "*.markdown", cfg.Index.Pattern)
	assert.Equal(t, 300, cfg.Index.ChunkSize)
	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
	assert.Equal(t, 64, cfg.Embeddings.Dimensions)
	assert.Equal(t, 50, cfg.Index.ChunkOverlap, "unset fields keep defaults")
	assert.Equal(t, filepath.Join(dir, ".wikigen"), cfg.Paths.DataDir)
}

func TestLoad_EnvOverridesProjectConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	yaml := "embeddings:\n  provider: ollama\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".wikigen.yaml"), []byte(yaml), 0o644))

	t.Setenv("WIKIGEN_EMBEDDINGS_PROVIDER", "static")
	t.Setenv("WIKIGEN_MAX_RESULTS", "3")
	t.Setenv("WIKIGEN_SEMANTIC", "false")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "static", cfg.Embeddings.Provider)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.False(t, cfg.Search.Semantic)
}

func TestLoad_ExplicitFalseBooleansOverride(t *testing.T) {
	// Given a project config turning both boolean toggles off
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	yaml := `
index:
  exclude_hidden: false
search:
  semantic: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".wikigen.yaml"), []byte(yaml), 0o644))

	// When loading
	cfg, err := Load(dir)
	require.NoError(t, err)

	// Then explicit false wins over the true defaults
	assert.False(t, cfg.Search.Semantic)
	assert.False(t, cfg.Index.ExcludeHidden)
}

func TestLoad_AbsentBooleansKeepDefaults(t *testing.T) {
	// Given a project config that does not mention the toggles
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	yaml := "index:\n  pattern: \"*.markdown\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".wikigen.yaml"), []byte(yaml), 0o644))

	// When loading
	cfg, err := Load(dir)
	require.NoError(t, err)

	// Then the true defaults survive the merge
	assert.True(t, cfg.Search.Semantic)
	assert.True(t, cfg.Index.ExcludeHidden)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".wikigen.yaml"), []byte("index: [not a map"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.Index.ChunkSize = 0 }},
		{"overlap >= chunk size", func(c *Config) { c.Index.ChunkOverlap = c.Index.ChunkSize }},
		{"negative max depth", func(c *Config) { c.Index.MaxDepth = -1 }},
		{"zero max results", func(c *Config) { c.Search.MaxResults = 0 }},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "gguf" }},
		{"zero dimensions", func(c *Config) { c.Embeddings.Dimensions = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := NewConfig()
	cfg.Index.Pattern = "*.txt"
	require.NoError(t, cfg.WriteYAML(path))

	loaded := NewConfig()
	require.NoError(t, loaded.loadYAML(path))
	assert.Equal(t, "*.txt", loaded.Index.Pattern)
}
