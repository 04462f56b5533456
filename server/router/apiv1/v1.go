// Package apiv1 exposes the anonymization and retrieval pipelines over
// REST. It owns request validation and the persistence side effects that
// the core treats as external collaborator concerns.
package apiv1

import (
	"github.com/labstack/echo/v4"

	"github.com/clinisense/clinisense/internal/profile"
	"github.com/clinisense/clinisense/server/deid"
	"github.com/clinisense/clinisense/server/rag"
	"github.com/clinisense/clinisense/store"
)

// APIV1Service wires the v1 REST routes.
type APIV1Service struct {
	profile    *profile.Profile
	store      *store.Store
	anonymizer *deid.Anonymizer
	engine     *rag.Engine
}

// NewAPIV1Service creates the v1 service.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, anonymizer *deid.Anonymizer, engine *rag.Engine) *APIV1Service {
	return &APIV1Service{
		profile:    profile,
		store:      store,
		anonymizer: anonymizer,
		engine:     engine,
	}
}

// RegisterRoutes registers all v1 routes on the echo group.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.POST("/anonymize", s.Anonymize)
	g.POST("/documents", s.CreateDocument)
	g.DELETE("/documents/:id", s.DeleteDocument)
	g.POST("/search", s.Search)
	g.POST("/qa/ask", s.Ask)
}
