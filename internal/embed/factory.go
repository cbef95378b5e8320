package embed

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config selects and configures an embedding provider.
type Config struct {
	// Provider is "ollama", "openai", "static", or empty for
	// auto-detection.
	Provider string
	// Model is the embedding model name.
	Model string
	// Dimensions is the embedding vector width.
	Dimensions int
	// BatchSize is the number of texts per request.
	BatchSize int
	// OllamaHost is the Ollama API endpoint.
	OllamaHost string
	// OpenAIModel is the model used with the openai provider.
	OpenAIModel string
	// Timeout bounds embedding requests.
	Timeout time.Duration
}

// NewProvider constructs the configured provider. An empty Provider
// auto-detects: Ollama when reachable, static otherwise.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "static":
		return NewStaticProvider(cfg.Dimensions), nil

	case "ollama":
		return newOllama(cfg), nil

	case "openai":
		return NewOpenAIProvider(cfg.OpenAIModel)

	case "":
		return autoDetect(cfg), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

func newOllama(cfg Config) *OllamaProvider {
	return NewOllamaProvider(OllamaConfig{
		Host:       cfg.OllamaHost,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		BatchSize:  cfg.BatchSize,
		Timeout:    cfg.Timeout,
	})
}

// autoDetect prefers Ollama and falls back to the static provider so
// semantic search keeps working offline.
func autoDetect(cfg Config) Provider {
	ollama := newOllama(cfg)
	if ollama.Available(context.Background()) {
		slog.Info("embedding_provider_selected",
			slog.String("provider", "ollama"),
			slog.String("model", ollama.ModelName()))
		return ollama
	}

	slog.Info("embedding_provider_selected",
		slog.String("provider", "static"),
		slog.String("reason", "ollama unreachable"))
	return NewStaticProvider(cfg.Dimensions)
}
