package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/clinisense/clinisense/internal/profile"
	"github.com/clinisense/clinisense/plugin/ai"
	"github.com/clinisense/clinisense/server/deid"
	"github.com/clinisense/clinisense/server/middleware"
	"github.com/clinisense/clinisense/server/rag"
	"github.com/clinisense/clinisense/server/router/apiv1"
	auditrunner "github.com/clinisense/clinisense/server/runner/audit"
	"github.com/clinisense/clinisense/store"
)

// Server assembles the pipelines, collaborators, and HTTP surface.
type Server struct {
	profile *profile.Profile
	store   *store.Store
	echo    *echo.Echo
	audit   *auditrunner.Runner
}

// NewServer creates the server from profile and store.
func NewServer(ctx context.Context, profile *profile.Profile, st *store.Store) (*Server, error) {
	if err := st.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "migrate store")
	}

	aiConfig := ai.NewConfigFromProfile(profile)
	embedder := ai.NewEmbeddingService(&aiConfig.Embedding)
	llm, err := ai.NewLLMService(&aiConfig.LLM)
	if err != nil {
		return nil, errors.Wrap(err, "create LLM service")
	}

	audit := auditrunner.NewRunner(st)
	anonymizer := deid.NewAnonymizer(audit)
	engine, err := rag.NewEngine(embedder, llm, audit, st, rag.Options{
		ChunkSize:           profile.RAGChunkSize,
		ChunkOverlap:        profile.RAGChunkOverlap,
		TopK:                profile.RAGTopK,
		SimilarityThreshold: profile.RAGSimilarityThreshold,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create retrieval engine")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.NewRateLimiter(10, 20).Middleware())

	apiv1.NewAPIV1Service(profile, st, anonymizer, engine).RegisterRoutes(e)

	return &Server{
		profile: profile,
		store:   st,
		echo:    e,
		audit:   audit,
	}, nil
}

// Start runs the audit runner and the HTTP listener.
func (s *Server) Start(ctx context.Context) error {
	go s.audit.Run(ctx)

	address := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	slog.Info("server started", "address", address, "mode", s.profile.Mode)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP listener and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}
