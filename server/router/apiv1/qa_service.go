package apiv1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/clinisense/clinisense/server/rag"
	"github.com/clinisense/clinisense/store"
)

type searchRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"topK"`
	Threshold float64 `json:"threshold"`
}

type retrievalResult struct {
	ChunkID    string  `json:"chunkId"`
	DocumentID string  `json:"documentId"`
	ChunkText  string  `json:"chunkText"`
	Similarity float64 `json:"similarityScore"`
	ChunkIndex int     `json:"chunkIndex"`
}

// Search handles POST /api/v1/search: a raw similarity scan without
// answer synthesis.
func (s *APIV1Service) Search(c echo.Context) error {
	request := &searchRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if request.TopK <= 0 {
		request.TopK = s.profile.RAGTopK
	}
	if request.Threshold == 0 {
		request.Threshold = s.profile.RAGSimilarityThreshold
	}

	results, err := s.engine.SearchText(c.Request().Context(), request.Query, request.TopK, request.Threshold)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed").SetInternal(err)
	}

	return c.JSON(http.StatusOK, convertResults(results))
}

type askRequest struct {
	Question   string `json:"question"`
	PatientID  string `json:"patientId"`
	MaxSources int    `json:"maxSources"`
}

type askResponse struct {
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Sources    []retrievalResult `json:"sources"`
	Confidence float64           `json:"confidence"`
}

// Ask handles POST /api/v1/qa/ask: the full RAG pipeline plus Q&A history
// persistence.
func (s *APIV1Service) Ask(c echo.Context) error {
	request := &askRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	ctx := c.Request().Context()
	answer, err := s.engine.Ask(ctx, request.Question, rag.AskOptions{
		MaxSources: request.MaxSources,
		PatientID:  request.PatientID,
	})
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuestion) {
			return echo.NewHTTPError(http.StatusBadRequest, "question is required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to answer question").SetInternal(err)
	}

	s.saveQuestion(ctx, request, answer)

	return c.JSON(http.StatusOK, &askResponse{
		Question:   request.Question,
		Answer:     answer.Text,
		Sources:    convertResults(answer.Sources),
		Confidence: answer.Confidence,
	})
}

// saveQuestion persists the Q&A turn. History is best-effort; a write
// failure never fails the request.
func (s *APIV1Service) saveQuestion(ctx context.Context, request *askRequest, answer *rag.Answer) {
	sources, err := json.Marshal(convertResults(answer.Sources))
	if err != nil {
		sources = []byte("[]")
	}
	if _, err := s.store.CreateQuestion(ctx, &store.Question{
		QuestionText: request.Question,
		PatientID:    request.PatientID,
		AnswerText:   answer.Text,
		Sources:      string(sources),
		Confidence:   answer.Confidence,
		CreatedTs:    time.Now().Unix(),
	}); err != nil {
		slog.Error("failed to save question", "error", err)
	}
}

func convertResults(results []rag.RetrievalResult) []retrievalResult {
	converted := make([]retrievalResult, len(results))
	for i, result := range results {
		converted[i] = retrievalResult{
			ChunkID:    result.ChunkID,
			DocumentID: result.DocumentID,
			ChunkText:  result.ChunkText,
			Similarity: result.Similarity,
			ChunkIndex: result.ChunkIndex,
		}
	}
	return converted
}
