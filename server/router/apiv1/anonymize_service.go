package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/clinisense/clinisense/server/deid"
)

type anonymizeRequest struct {
	DocumentID      string `json:"documentId"`
	Text            string `json:"text"`
	Strategy        string `json:"strategy"`
	PreserveMedical *bool  `json:"preserveMedical"`
}

type detectedEntity struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
}

type anonymizeResponse struct {
	AnonymizedText string           `json:"anonymizedText"`
	Strategy       string           `json:"strategy"`
	Entities       []detectedEntity `json:"entities"`
}

// Anonymize handles POST /api/v1/anonymize.
func (s *APIV1Service) Anonymize(c echo.Context) error {
	request := &anonymizeRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if request.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	strategyValue := request.Strategy
	if strategyValue == "" {
		strategyValue = s.profile.DeidDefaultStrategy
	}
	strategy, err := deid.ParseStrategy(strategyValue)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported strategy").SetInternal(err)
	}

	preserveMedical := s.profile.DeidPreserveMedical
	if request.PreserveMedical != nil {
		preserveMedical = *request.PreserveMedical
	}

	result, err := s.anonymizer.Anonymize(request.DocumentID, request.Text, strategy, preserveMedical)
	if err != nil {
		if errors.Is(err, deid.ErrEmptyText) {
			return echo.NewHTTPError(http.StatusBadRequest, "text is required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to anonymize").SetInternal(err)
	}

	return c.JSON(http.StatusOK, &anonymizeResponse{
		AnonymizedText: result.AnonymizedText,
		Strategy:       string(result.Strategy),
		Entities:       convertEntities(result.Entities),
	})
}

func convertEntities(spans []deid.DetectedSpan) []detectedEntity {
	entities := make([]detectedEntity, len(spans))
	for i, span := range spans {
		entities[i] = detectedEntity{
			Type:       string(span.Type),
			Value:      span.Value,
			Confidence: span.Confidence,
			Start:      span.Start,
			End:        span.End,
		}
	}
	return entities
}
