package ai

import (
	"time"

	"github.com/clinisense/clinisense/internal/profile"
)

// Config represents AI collaborator configuration.
type Config struct {
	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string // openai
	Model      string // text-embedding-3-small
	Dimensions int    // 1536
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string // openai, ollama
	Model       string // gpt-4o-mini
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.7
	Timeout     time.Duration
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	timeout := time.Duration(p.AITimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cfg := &Config{
		Embedding: EmbeddingConfig{
			Provider:   p.AIEmbeddingProvider,
			Model:      p.AIEmbeddingModel,
			Dimensions: p.AIEmbeddingDimension,
			APIKey:     p.AIAPIKey,
			BaseURL:    p.AIBaseURL,
			Timeout:    timeout,
		},
		LLM: LLMConfig{
			Provider:    p.AILLMProvider,
			Model:       p.AILLMModel,
			APIKey:      p.AIAPIKey,
			BaseURL:     p.AIBaseURL,
			MaxTokens:   2048,
			Temperature: 0.7,
			Timeout:     timeout,
		},
	}

	if p.AILLMProvider == "ollama" {
		cfg.LLM.BaseURL = p.AIOllamaBaseURL
	}
	if cfg.Embedding.Dimensions <= 0 {
		cfg.Embedding.Dimensions = 1536
	}

	return cfg
}
