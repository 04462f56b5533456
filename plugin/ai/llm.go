package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LLMService is the answer synthesis service interface. Like the embedding
// service, it never fails on provider errors: an unreachable or
// unconfigured provider degrades to a local templated summary.
type LLMService interface {
	// Complete generates an answer for the question given the retrieved context.
	Complete(ctx context.Context, systemPrompt, question, contextText string) (string, error)
}

// NewLLMService creates an LLMService from config.
func NewLLMService(cfg *LLMConfig) (LLMService, error) {
	if cfg.Provider != "ollama" && cfg.APIKey == "" {
		slog.Info("LLM provider not configured, using local fallback")
		return &fallbackLLM{}, nil
	}

	var model llms.Model
	var err error

	switch cfg.Provider {
	case "openai":
		model, err = openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithModel(cfg.Model),
		)

	case "ollama":
		model, err = ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.BaseURL),
		)

	default:
		return nil, errors.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, errors.Wrap(err, "create LLM client")
	}

	return &resilientLLM{
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

type resilientLLM struct {
	model       llms.Model
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

func (s *resilientLLM) Complete(ctx context.Context, systemPrompt, question, contextText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, fmt.Sprintf("Context: %s\n\nQuestion: %s", contextText, question)),
	}

	resp, err := s.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(s.maxTokens),
		llms.WithTemperature(float64(s.temperature)),
	)
	if err != nil {
		slog.Warn("LLM provider unavailable, using templated answer", "error", err)
		return (&fallbackLLM{}).Complete(context.Background(), systemPrompt, question, contextText)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("LLM returned no choices, using templated answer")
		return (&fallbackLLM{}).Complete(context.Background(), systemPrompt, question, contextText)
	}

	return resp.Choices[0].Content, nil
}

// fallbackLLM produces a templated summary. It keeps the Q&A pipeline
// total when no provider is reachable; confidence scoring downstream is
// unaffected since it derives from retrieval scores only.
type fallbackLLM struct{}

func (*fallbackLLM) Complete(_ context.Context, _, question, contextText string) (string, error) {
	preview := contextText
	if len(preview) > 200 {
		preview = preview[:200]
	}
	return fmt.Sprintf("Based on the provided context: %s... The answer to your question %q would require more detailed analysis.", preview, question), nil
}
