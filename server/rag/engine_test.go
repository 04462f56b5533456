package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps exact texts to fixed vectors; anything else gets the
// default vector. Keeps similarity arithmetic under the test's control.
type stubEmbedder struct {
	vectors    map[string][]float32
	defaultVec []float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return s.defaultVec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int {
	return len(s.defaultVec)
}

// capturingLLM records what it was asked and returns a canned answer.
type capturingLLM struct {
	systemPrompt string
	question     string
	contextText  string
	answer       string
}

func (c *capturingLLM) Complete(_ context.Context, systemPrompt, question, contextText string) (string, error) {
	c.systemPrompt = systemPrompt
	c.question = question
	c.contextText = contextText
	return c.answer, nil
}

type stubMetadata struct {
	byPatient map[string][]string
}

func (s *stubMetadata) DocumentIDsByPatient(_ context.Context, patientID string) ([]string, error) {
	return s.byPatient[patientID], nil
}

type countingAudit struct {
	indexed []string
}

func (c *countingAudit) RecordIndexed(documentID string) {
	c.indexed = append(c.indexed, documentID)
}

func newTestEngine(t *testing.T, embedder *stubEmbedder, llm *capturingLLM, metadata MetadataStore, opts Options) *Engine {
	t.Helper()
	engine, err := NewEngine(embedder, llm, nil, metadata, opts)
	require.NoError(t, err)
	return engine
}

func TestIndexDocument(t *testing.T) {
	embedder := &stubEmbedder{defaultVec: []float32{1, 0}}
	engine := newTestEngine(t, embedder, &capturingLLM{}, nil, Options{ChunkSize: 100, ChunkOverlap: 20})

	text := strings.Repeat("a", 100) + strings.Repeat("b", 80)
	count, err := engine.IndexDocument(context.Background(), "d1", text)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all := engine.Index().AllChunks()
	require.Len(t, all, 2)
	for _, chunk := range all {
		assert.Equal(t, "d1", chunk.DocumentID)
		assert.NotEmpty(t, chunk.ID)
		assert.Equal(t, []float32{1, 0}, chunk.Embedding)
	}
	assert.NotEqual(t, all[0].ID, all[1].ID)
	assert.Equal(t, 0, all[0].Index)
	assert.Equal(t, 1, all[1].Index)
}

func TestIndexDocumentEmptyText(t *testing.T) {
	engine := newTestEngine(t, &stubEmbedder{defaultVec: []float32{1}}, &capturingLLM{}, nil, Options{})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := engine.IndexDocument(context.Background(), "d1", text)
		assert.ErrorIs(t, err, ErrEmptyDocument)
	}
	assert.Empty(t, engine.Index().AllChunks())
}

func TestIndexDocumentReportsToAudit(t *testing.T) {
	embedder := &stubEmbedder{defaultVec: []float32{1}}
	audit := &countingAudit{}
	engine, err := NewEngine(embedder, &capturingLLM{}, audit, nil, Options{})
	require.NoError(t, err)

	_, err = engine.IndexDocument(context.Background(), "d1", "some clinical note")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, audit.indexed)
}

func TestReindexReplacesChunks(t *testing.T) {
	embedder := &stubEmbedder{defaultVec: []float32{1, 0}}
	engine := newTestEngine(t, embedder, &capturingLLM{}, nil, Options{ChunkSize: 500, ChunkOverlap: 50})

	count, err := engine.IndexDocument(context.Background(), "d1", strings.Repeat("a", 1200))
	require.NoError(t, err)
	require.Equal(t, 3, count)

	count, err = engine.IndexDocument(context.Background(), "d1", strings.Repeat("b", 100))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	all := engine.Index().AllChunks()
	require.Len(t, all, 1)
	assert.Equal(t, 0, all[0].Index)
	assert.Equal(t, strings.Repeat("b", 100), all[0].Text)
}

func TestSearchRanking(t *testing.T) {
	embedder := &stubEmbedder{defaultVec: []float32{0, 0, 1}}
	engine := newTestEngine(t, embedder, &capturingLLM{}, nil, Options{})

	engine.Index().Put("d1", []Chunk{
		{ID: "c1", DocumentID: "d1", Text: "exact", Index: 0, Embedding: []float32{1, 0, 0}},
		{ID: "c2", DocumentID: "d1", Text: "near", Index: 1, Embedding: []float32{1, 1, 0}},
	})
	engine.Index().Put("d2", []Chunk{
		{ID: "c3", DocumentID: "d2", Text: "far", Index: 0, Embedding: []float32{0, 1, 0}},
	})

	results := engine.Search([]float32{1, 0, 0}, 10, 0.0, nil)
	require.Len(t, results, 3)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
	assert.Equal(t, "c2", results[1].ChunkID)
	assert.Equal(t, "c3", results[2].ChunkID)
}

func TestSearchTopKAndThreshold(t *testing.T) {
	engine := newTestEngine(t, &stubEmbedder{defaultVec: []float32{1}}, &capturingLLM{}, nil, Options{})
	engine.Index().Put("d1", []Chunk{
		{ID: "c1", DocumentID: "d1", Embedding: []float32{1, 0}},
		{ID: "c2", DocumentID: "d1", Embedding: []float32{1, 1}},
		{ID: "c3", DocumentID: "d1", Embedding: []float32{0, 1}},
	})

	query := []float32{1, 0}

	results := engine.Search(query, 2, 0.0, nil)
	assert.Len(t, results, 2)

	// Threshold excludes the orthogonal chunk even with room in topK.
	results = engine.Search(query, 10, 0.5, nil)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.GreaterOrEqual(t, result.Similarity, 0.5)
	}
}

func TestSearchExactMatchAcrossDocuments(t *testing.T) {
	target := []float32{0.3, 0.7, 0.1}
	engine := newTestEngine(t, &stubEmbedder{defaultVec: []float32{1}}, &capturingLLM{}, nil, Options{})
	engine.Index().Put("d1", []Chunk{
		{ID: "c1", DocumentID: "d1", Text: "other", Embedding: []float32{0.9, 0.1, 0.5}},
	})
	engine.Index().Put("d2", []Chunk{
		{ID: "c2", DocumentID: "d2", Text: "target", Embedding: target},
	})

	results := engine.Search(target, 1, 0.5, nil)
	require.Len(t, results, 1)
	assert.Equal(t, "c2", results[0].ChunkID)
	assert.Equal(t, "d2", results[0].DocumentID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
}

func TestSearchTieKeepsScanOrder(t *testing.T) {
	engine := newTestEngine(t, &stubEmbedder{defaultVec: []float32{1}}, &capturingLLM{}, nil, Options{})
	// Two chunks with identical embeddings score identically.
	engine.Index().Put("d1", []Chunk{
		{ID: "first", DocumentID: "d1", Embedding: []float32{1, 2}},
	})
	engine.Index().Put("d2", []Chunk{
		{ID: "second", DocumentID: "d2", Embedding: []float32{1, 2}},
	})

	results := engine.Search([]float32{1, 2}, 10, 0.0, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].ChunkID)
	assert.Equal(t, "second", results[1].ChunkID)
}

func TestSearchFilter(t *testing.T) {
	engine := newTestEngine(t, &stubEmbedder{defaultVec: []float32{1}}, &capturingLLM{}, nil, Options{})
	engine.Index().Put("d1", []Chunk{{ID: "c1", DocumentID: "d1", Embedding: []float32{1}}})
	engine.Index().Put("d2", []Chunk{{ID: "c2", DocumentID: "d2", Embedding: []float32{1}}})

	results := engine.Search([]float32{1}, 10, 0.0, func(documentID string) bool {
		return documentID == "d2"
	})
	require.Len(t, results, 1)
	assert.Equal(t, "c2", results[0].ChunkID)
}

func TestSearchText(t *testing.T) {
	embedder := &stubEmbedder{
		vectors:    map[string][]float32{"find me": {1, 0}},
		defaultVec: []float32{0, 1},
	}
	engine := newTestEngine(t, embedder, &capturingLLM{}, nil, Options{})
	engine.Index().Put("d1", []Chunk{{ID: "c1", DocumentID: "d1", Embedding: []float32{1, 0}}})

	results, err := engine.SearchText(context.Background(), "find me", 5, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
}

func TestAsk(t *testing.T) {
	embedder := &stubEmbedder{
		vectors:    map[string][]float32{"What medication?": {1, 0}},
		defaultVec: []float32{0, 1},
	}
	llm := &capturingLLM{answer: "The patient takes aspirin."}
	engine := newTestEngine(t, embedder, llm, nil, Options{TopK: 5})

	engine.Index().Put("d1", []Chunk{
		{ID: "c1", DocumentID: "d1", Text: "Prescribed aspirin daily.", Index: 0, Embedding: []float32{1, 0}},
	})
	engine.Index().Put("d2", []Chunk{
		{ID: "c2", DocumentID: "d2", Text: "Blood pressure normal.", Index: 0, Embedding: []float32{2, 0}},
	})

	answer, err := engine.Ask(context.Background(), "What medication?", AskOptions{})
	require.NoError(t, err)

	assert.Equal(t, "The patient takes aspirin.", answer.Text)
	require.Len(t, answer.Sources, 2)
	assert.InDelta(t, 1.0, answer.Confidence, 1e-9)

	assert.Contains(t, llm.systemPrompt, "medical assistant")
	assert.Equal(t, "What medication?", llm.question)
	assert.Contains(t, llm.contextText, "Document: d1\nPrescribed aspirin daily.")
	assert.Contains(t, llm.contextText, "Document: d2\nBlood pressure normal.")
	assert.Contains(t, llm.contextText, "\n\n---\n\n")
}

func TestAskNoSources(t *testing.T) {
	embedder := &stubEmbedder{defaultVec: []float32{1, 0}}
	llm := &capturingLLM{answer: "I do not have that information."}
	engine := newTestEngine(t, embedder, llm, nil, Options{SimilarityThreshold: 0.5})

	engine.Index().Put("d1", []Chunk{
		{ID: "c1", DocumentID: "d1", Text: "irrelevant", Embedding: []float32{0, 1}},
	})

	answer, err := engine.Ask(context.Background(), "Anything?", AskOptions{})
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, 0.0, answer.Confidence)
	assert.Empty(t, llm.contextText)
}

func TestAskEmptyQuestion(t *testing.T) {
	engine := newTestEngine(t, &stubEmbedder{defaultVec: []float32{1}}, &capturingLLM{}, nil, Options{})

	_, err := engine.Ask(context.Background(), "   ", AskOptions{})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAskMaxSources(t *testing.T) {
	embedder := &stubEmbedder{defaultVec: []float32{1, 0}}
	engine := newTestEngine(t, embedder, &capturingLLM{answer: "ok"}, nil, Options{TopK: 5})

	chunks := make([]Chunk, 4)
	for i := range chunks {
		chunks[i] = Chunk{ID: string(rune('a' + i)), DocumentID: "d1", Index: i, Embedding: []float32{1, 0}}
	}
	engine.Index().Put("d1", chunks)

	answer, err := engine.Ask(context.Background(), "q", AskOptions{MaxSources: 2})
	require.NoError(t, err)
	assert.Len(t, answer.Sources, 2)
}

func TestAskPatientFilter(t *testing.T) {
	embedder := &stubEmbedder{defaultVec: []float32{1, 0}}
	metadata := &stubMetadata{byPatient: map[string][]string{"p1": {"d1"}}}
	engine := newTestEngine(t, embedder, &capturingLLM{answer: "ok"}, metadata, Options{})

	engine.Index().Put("d1", []Chunk{{ID: "c1", DocumentID: "d1", Embedding: []float32{1, 0}}})
	engine.Index().Put("d2", []Chunk{{ID: "c2", DocumentID: "d2", Embedding: []float32{1, 0}}})

	answer, err := engine.Ask(context.Background(), "q", AskOptions{PatientID: "p1"})
	require.NoError(t, err)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "d1", answer.Sources[0].DocumentID)

	// Unknown patient matches nothing.
	answer, err = engine.Ask(context.Background(), "q", AskOptions{PatientID: "p9"})
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
}
