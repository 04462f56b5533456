package apiv1

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/clinisense/clinisense/server/rag"
	"github.com/clinisense/clinisense/store"
)

type createDocumentRequest struct {
	PatientID string `json:"patientId"`
	Title     string `json:"title"`
	// Text is the extracted plain text of the document. Binary format
	// parsing happens upstream of this API.
	Text string `json:"text"`
}

type documentResponse struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	Title     string `json:"title"`
	Chunks    int    `json:"chunks"`
}

// CreateDocument handles POST /api/v1/documents: persist metadata and
// index the document text for retrieval.
func (s *APIV1Service) CreateDocument(c echo.Context) error {
	request := &createDocumentRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	ctx := c.Request().Context()
	document, err := s.store.CreateDocument(ctx, &store.Document{
		ID:        uuid.NewString(),
		PatientID: request.PatientID,
		Title:     request.Title,
		CreatedTs: time.Now().Unix(),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create document").SetInternal(err)
	}

	chunks, err := s.engine.IndexDocument(ctx, document.ID, request.Text)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyDocument) {
			return echo.NewHTTPError(http.StatusBadRequest, "text is required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to index document").SetInternal(err)
	}

	return c.JSON(http.StatusOK, &documentResponse{
		ID:        document.ID,
		PatientID: document.PatientID,
		Title:     document.Title,
		Chunks:    chunks,
	})
}

// DeleteDocument handles DELETE /api/v1/documents/:id.
func (s *APIV1Service) DeleteDocument(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document id is required")
	}

	ctx := c.Request().Context()
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete document").SetInternal(err)
	}
	s.engine.DeleteDocument(ctx, id)

	return c.NoContent(http.StatusNoContent)
}
