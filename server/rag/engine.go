package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/clinisense/clinisense/plugin/ai"
)

// embedConcurrency bounds concurrent embedding calls during indexing to
// avoid overwhelming the provider.
const embedConcurrency = 3

// contextSeparator joins ranked results in the assembled context string.
const contextSeparator = "\n\n---\n\n"

// systemPrompt conditions answer synthesis on the retrieved context.
const systemPrompt = "You are a medical assistant. Answer questions based on the provided medical context. " +
	"Always cite your sources. If the answer is not in the context, say so."

var (
	// ErrEmptyDocument is returned when indexing is called with no text.
	ErrEmptyDocument = errors.New("document text is empty")
	// ErrEmptyQuestion is returned when Ask is called with no question.
	ErrEmptyQuestion = errors.New("question is empty")
)

// RetrievalResult is one ranked chunk from a similarity scan. Results are
// computed fresh per call and never persisted by the engine.
type RetrievalResult struct {
	ChunkID    string
	DocumentID string
	ChunkText  string
	Similarity float64
	ChunkIndex int
}

// DocumentFilter restricts a scan to matching documents. nil admits all.
type DocumentFilter func(documentID string) bool

// AuditSink receives indexing lifecycle events. Implementations must not
// block; reporting is fire-and-forget.
type AuditSink interface {
	RecordIndexed(documentID string)
}

// MetadataStore resolves which documents belong to a patient, for search
// filtering. Document metadata itself lives outside the retrieval core.
type MetadataStore interface {
	DocumentIDsByPatient(ctx context.Context, patientID string) ([]string, error)
}

// Options tune the engine defaults.
type Options struct {
	ChunkSize           int
	ChunkOverlap        int
	TopK                int
	SimilarityThreshold float64
}

// Engine wires chunking, embedding, the vector index, and answer
// synthesis into the indexing and question-answering pipelines.
type Engine struct {
	chunker   *Chunker
	index     *VectorIndex
	embedder  ai.EmbeddingService
	llm       ai.LLMService
	audit     AuditSink
	metadata  MetadataStore
	topK      int
	threshold float64
}

// NewEngine creates an Engine. audit and metadata may be nil.
func NewEngine(embedder ai.EmbeddingService, llm ai.LLMService, audit AuditSink, metadata MetadataStore, opts Options) (*Engine, error) {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = DefaultChunkSize
		if opts.ChunkOverlap == 0 {
			opts.ChunkOverlap = DefaultChunkOverlap
		}
	}
	chunker, err := NewChunker(opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}

	return &Engine{
		chunker:   chunker,
		index:     NewVectorIndex(),
		embedder:  embedder,
		llm:       llm,
		audit:     audit,
		metadata:  metadata,
		topK:      opts.TopK,
		threshold: opts.SimilarityThreshold,
	}, nil
}

// Index exposes the underlying vector index.
func (e *Engine) Index() *VectorIndex {
	return e.index
}

// IndexDocument chunks and embeds text, then atomically replaces the
// document's chunks in the index. Embedding runs with bounded concurrency;
// provider failures degrade to fallback vectors inside the embedding
// service, so indexing always completes for well-formed input.
func (e *Engine) IndexDocument(ctx context.Context, documentID, text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyDocument
	}

	drafts := e.chunker.Chunk(text)
	chunks := make([]Chunk, len(drafts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, draft := range drafts {
		i, draft := i, draft
		g.Go(func() error {
			embedding, err := e.embedder.Embed(gctx, draft.Text)
			if err != nil {
				return errors.Wrapf(err, "embed chunk %d", draft.Index)
			}
			chunks[i] = Chunk{
				ID:         shortuuid.New(),
				DocumentID: documentID,
				Text:       draft.Text,
				Index:      draft.Index,
				Embedding:  embedding,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	e.index.Put(documentID, chunks)

	slog.Info("indexed document", "document_id", documentID, "chunks", len(chunks))
	if e.audit != nil {
		e.audit.RecordIndexed(documentID)
	}
	return len(chunks), nil
}

// DeleteDocument removes a document's chunks from the index.
func (e *Engine) DeleteDocument(_ context.Context, documentID string) {
	e.index.Delete(documentID)
	slog.Info("removed document from index", "document_id", documentID)
}

// Search scans every stored chunk, keeps those with similarity at or above
// threshold that pass the filter, and returns at most topK results sorted
// by similarity descending. Equal scores keep scan order, so ranking is
// deterministic for a fixed index state.
func (e *Engine) Search(queryVector []float32, topK int, threshold float64, filter DocumentFilter) []RetrievalResult {
	results := make([]RetrievalResult, 0, topK)
	for _, chunk := range e.index.AllChunks() {
		if filter != nil && !filter(chunk.DocumentID) {
			continue
		}
		similarity := CosineSimilarity(queryVector, chunk.Embedding)
		if similarity < threshold {
			continue
		}
		results = append(results, RetrievalResult{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			ChunkText:  chunk.Text,
			Similarity: similarity,
			ChunkIndex: chunk.Index,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// SearchText embeds the query and scans the index. A plain-text
// convenience over Search for callers without a precomputed vector.
func (e *Engine) SearchText(ctx context.Context, query string, topK int, threshold float64) ([]RetrievalResult, error) {
	queryVector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}
	return e.Search(queryVector, topK, threshold, nil), nil
}

// AskOptions tune one Ask call.
type AskOptions struct {
	// MaxSources caps the retrieved chunks; 0 uses the engine default.
	MaxSources int
	// PatientID restricts retrieval to that patient's documents.
	PatientID string
}

// Answer is the outcome of one Ask call. Confidence is the mean similarity
// of the retrieved sources, 0.0 when nothing qualified.
type Answer struct {
	Text       string
	Sources    []RetrievalResult
	Confidence float64
}

// Ask answers a question against the indexed corpus: embed the question,
// scan for the most similar chunks, assemble their text into a context
// string, and synthesize an answer conditioned on it.
func (e *Engine) Ask(ctx context.Context, question string, opts AskOptions) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	queryVector, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, errors.Wrap(err, "embed question")
	}

	filter, err := e.patientFilter(ctx, opts.PatientID)
	if err != nil {
		return nil, err
	}

	topK := opts.MaxSources
	if topK <= 0 {
		topK = e.topK
	}
	sources := e.Search(queryVector, topK, e.threshold, filter)

	answerText, err := e.llm.Complete(ctx, systemPrompt, question, buildContext(sources))
	if err != nil {
		return nil, errors.Wrap(err, "synthesize answer")
	}

	return &Answer{
		Text:       answerText,
		Sources:    sources,
		Confidence: meanSimilarity(sources),
	}, nil
}

func (e *Engine) patientFilter(ctx context.Context, patientID string) (DocumentFilter, error) {
	if patientID == "" || e.metadata == nil {
		return nil, nil
	}
	ids, err := e.metadata.DocumentIDsByPatient(ctx, patientID)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve documents for patient %s", patientID)
	}
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	return func(documentID string) bool {
		return allowed[documentID]
	}, nil
}

func buildContext(results []RetrievalResult) string {
	parts := make([]string, len(results))
	for i, result := range results {
		parts[i] = fmt.Sprintf("Document: %s\n%s", result.DocumentID, result.ChunkText)
	}
	return strings.Join(parts, contextSeparator)
}

func meanSimilarity(results []RetrievalResult) float64 {
	if len(results) == 0 {
		return 0.0
	}
	var sum float64
	for _, result := range results {
		sum += result.Similarity
	}
	return sum / float64(len(results))
}
