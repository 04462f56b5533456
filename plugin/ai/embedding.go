package ai

import (
	"context"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// EmbeddingService is the vector embedding service interface.
// Implementations never fail on provider errors: when the remote provider
// is unreachable or unconfigured, a deterministic local vector of the same
// dimension is returned instead, so indexing and search always complete.
type EmbeddingService interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimension.
	Dimensions() int
}

// NewEmbeddingService creates an EmbeddingService from config. With an API
// key it talks to the remote provider and falls back locally on failure;
// without one it runs on the local fallback alone.
func NewEmbeddingService(cfg *EmbeddingConfig) EmbeddingService {
	local := &localEmbedder{dimensions: cfg.Dimensions}
	if cfg.APIKey == "" {
		slog.Info("embedding provider not configured, using local fallback", "dimensions", cfg.Dimensions)
		return local
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &resilientEmbedder{
		remote: &openaiEmbedder{
			client:     openai.NewClientWithConfig(clientConfig),
			model:      cfg.Model,
			dimensions: cfg.Dimensions,
		},
		fallback: local,
		timeout:  cfg.Timeout,
	}
}

type openaiEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

func (s *openaiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *openaiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	}

	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "create embeddings failed")
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.Errorf("embedding response size mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = data.Embedding
	}
	return vectors, nil
}

func (s *openaiEmbedder) Dimensions() int {
	return s.dimensions
}

// localEmbedder derives a vector from word hashes. It is not a semantic
// embedding; it exists so the pipeline keeps a deterministic shape when no
// provider is reachable. Identical text always yields an identical vector.
type localEmbedder struct {
	dimensions int
}

func (s *localEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	embedding := make([]float32, s.dimensions)
	words := strings.Fields(strings.ToLower(text))
	for i := 0; i < len(words) && i < s.dimensions; i++ {
		h := fnv.New32a()
		h.Write([]byte(words[i]))
		embedding[i] = float32(int32(h.Sum32())) / 1000000
	}
	return embedding, nil
}

func (s *localEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, _ := s.Embed(ctx, text)
		vectors[i] = vector
	}
	return vectors, nil
}

func (s *localEmbedder) Dimensions() int {
	return s.dimensions
}

// resilientEmbedder tries the remote provider under a timeout and collapses
// any failure into the local fallback vector.
type resilientEmbedder struct {
	remote   EmbeddingService
	fallback *localEmbedder
	timeout  time.Duration
}

func (s *resilientEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vector, err := s.remote.Embed(ctx, text)
	if err != nil {
		slog.Warn("embedding provider unavailable, using local fallback", "error", err)
		return s.fallback.Embed(context.Background(), text)
	}
	return vector, nil
}

func (s *resilientEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vectors, err := s.remote.EmbedBatch(ctx, texts)
	if err != nil {
		slog.Warn("embedding provider unavailable, using local fallback", "error", err, "texts", len(texts))
		return s.fallback.EmbedBatch(context.Background(), texts)
	}
	return vectors, nil
}

func (s *resilientEmbedder) Dimensions() int {
	return s.remote.Dimensions()
}
