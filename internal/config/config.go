// Package config loads and validates wikigen configuration.
//
// Configuration is applied in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/wikigen/config.yaml)
//  3. Project config (.wikigen.yaml in the corpus directory)
//  4. Environment variables (WIKIGEN_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete wikigen configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Index      IndexConfig      `yaml:"index" json:"index"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
}

// PathsConfig configures where indexes and metadata live.
type PathsConfig struct {
	// DataDir is the directory holding catalog.db, vectors.gob and the
	// writer lock. Defaults to <corpus>/.wikigen.
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// IndexConfig configures corpus scanning and chunking.
type IndexConfig struct {
	// Pattern is the glob matched against file names (default: *.md).
	Pattern string `yaml:"pattern" json:"pattern"`
	// ExcludeHidden skips dot-files and dot-directories.
	ExcludeHidden bool `yaml:"exclude_hidden" json:"exclude_hidden"`
	// MaxDepth limits directory recursion. 0 means unlimited.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
	// MaxFileSizeKB skips files larger than this. 0 means unlimited.
	MaxFileSizeKB int `yaml:"max_file_size_kb" json:"max_file_size_kb"`
	// ChunkSize is the target chunk size in tokens.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
	// ChunkOverlap is the overlap between adjacent chunks in tokens.
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"`
}

// SearchConfig configures retrieval behavior.
type SearchConfig struct {
	// Semantic enables the embedding rerank stage. When false,
	// keyword results are returned directly.
	Semantic bool `yaml:"semantic" json:"semantic"`
	// MaxResults is the default result limit.
	MaxResults int `yaml:"max_results" json:"max_results"`
	// CandidateLimit caps the keyword candidate set fed to the
	// vector stage.
	CandidateLimit int `yaml:"candidate_limit" json:"candidate_limit"`
	// PerFileLimit caps results per file when a directory filter
	// is active.
	PerFileLimit int `yaml:"per_file_limit" json:"per_file_limit"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the backend: "ollama", "openai", "static",
	// or empty for auto-detection.
	Provider string `yaml:"provider" json:"provider"`
	// Model is the embedding model name.
	Model string `yaml:"model" json:"model"`
	// Dimensions is the embedding vector width.
	Dimensions int `yaml:"dimensions" json:"dimensions"`
	// BatchSize is the number of texts embedded per request.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// OllamaHost is the Ollama API endpoint.
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
	// OpenAIModel is the model used with the openai provider.
	OpenAIModel string `yaml:"openai_model" json:"openai_model"`
	// CacheSize is the query embedding cache capacity.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// NewConfig creates a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			Pattern:       "*.md",
			ExcludeHidden: true,
			MaxDepth:      0,
			MaxFileSizeKB: 1024,
			ChunkSize:     500,
			ChunkOverlap:  50,
		},
		Search: SearchConfig{
			Semantic:       true,
			MaxResults:     10,
			CandidateLimit: 50,
			PerFileLimit:   5,
		},
		Embeddings: EmbeddingsConfig{
			Provider:    "",
			Model:       "nomic-embed-text",
			Dimensions:  768,
			BatchSize:   32,
			OllamaHost:  "http://localhost:11434",
			OpenAIModel: "text-embedding-3-small",
			CacheSize:   256,
		},
		LogLevel: "info",
	}
}

// GetUserConfigPath returns the user configuration file path.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wikigen", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "wikigen", "config.yaml")
	}
	return filepath.Join(home, ".config", "wikigen", "config.yaml")
}

// Load loads configuration for the given corpus directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadFromDir(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = filepath.Join(dir, ".wikigen")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromDir attempts to load .wikigen.yaml or .wikigen.yml from dir.
func (c *Config) loadFromDir(dir string) error {
	for _, name := range []string{".wikigen.yaml", ".wikigen.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	// No project config is fine, defaults apply.
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Booleans cannot be merged by zero-value checks: an explicit
	// false is indistinguishable from an absent key. A second
	// unmarshal into pointer fields captures key presence.
	var flags boolOverlay
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	c.applyBoolOverlay(&flags)
	return nil
}

// boolOverlay mirrors the boolean config keys with pointer fields so
// an explicit false in a file still overrides.
type boolOverlay struct {
	Index struct {
		ExcludeHidden *bool `yaml:"exclude_hidden"`
	} `yaml:"index"`
	Search struct {
		Semantic *bool `yaml:"semantic"`
	} `yaml:"search"`
}

func (c *Config) applyBoolOverlay(flags *boolOverlay) {
	if flags.Index.ExcludeHidden != nil {
		c.Index.ExcludeHidden = *flags.Index.ExcludeHidden
	}
	if flags.Search.Semantic != nil {
		c.Search.Semantic = *flags.Search.Semantic
	}
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Paths.DataDir != "" {
		c.Paths.DataDir = other.Paths.DataDir
	}

	if other.Index.Pattern != "" {
		c.Index.Pattern = other.Index.Pattern
	}
	if other.Index.MaxDepth != 0 {
		c.Index.MaxDepth = other.Index.MaxDepth
	}
	if other.Index.MaxFileSizeKB != 0 {
		c.Index.MaxFileSizeKB = other.Index.MaxFileSizeKB
	}
	if other.Index.ChunkSize != 0 {
		c.Index.ChunkSize = other.Index.ChunkSize
	}
	if other.Index.ChunkOverlap != 0 {
		c.Index.ChunkOverlap = other.Index.ChunkOverlap
	}

	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.CandidateLimit != 0 {
		c.Search.CandidateLimit = other.Search.CandidateLimit
	}
	if other.Search.PerFileLimit != 0 {
		c.Search.PerFileLimit = other.Search.PerFileLimit
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.OpenAIModel != "" {
		c.Embeddings.OpenAIModel = other.Embeddings.OpenAIModel
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies WIKIGEN_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WIKIGEN_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("WIKIGEN_PATTERN"); v != "" {
		c.Index.Pattern = v
	}
	if v := os.Getenv("WIKIGEN_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("WIKIGEN_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("WIKIGEN_EMBEDDINGS_DIMENSIONS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			c.Embeddings.Dimensions = d
		}
	}
	if v := os.Getenv("WIKIGEN_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("WIKIGEN_SEMANTIC"); v != "" {
		c.Search.Semantic = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("WIKIGEN_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("WIKIGEN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Index.ChunkSize <= 0 {
		return fmt.Errorf("index.chunk_size must be positive, got %d", c.Index.ChunkSize)
	}
	if c.Index.ChunkOverlap < 0 {
		return fmt.Errorf("index.chunk_overlap must be non-negative, got %d", c.Index.ChunkOverlap)
	}
	if c.Index.ChunkOverlap >= c.Index.ChunkSize {
		return fmt.Errorf("index.chunk_overlap must be smaller than chunk_size, got %d >= %d",
			c.Index.ChunkOverlap, c.Index.ChunkSize)
	}
	if c.Index.MaxDepth < 0 {
		return fmt.Errorf("index.max_depth must be non-negative, got %d", c.Index.MaxDepth)
	}

	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.CandidateLimit <= 0 {
		return fmt.Errorf("search.candidate_limit must be positive, got %d", c.Search.CandidateLimit)
	}
	if c.Search.PerFileLimit <= 0 {
		return fmt.Errorf("search.per_file_limit must be positive, got %d", c.Search.PerFileLimit)
	}

	if c.Embeddings.Provider != "" {
		validProviders := map[string]bool{"ollama": true, "openai": true, "static": true}
		if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
			return fmt.Errorf("embeddings.provider must be 'ollama', 'openai', 'static', or empty (auto-detect), got %s",
				c.Embeddings.Provider)
		}
	}
	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}
	if c.Embeddings.BatchSize <= 0 {
		return fmt.Errorf("embeddings.batch_size must be positive, got %d", c.Embeddings.BatchSize)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
