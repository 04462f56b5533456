// Package store persists the entities surrounding the text pipelines:
// document metadata, the anonymization audit trail, and Q&A history. The
// pipelines themselves never touch it directly; they see it through narrow
// collaborator interfaces.
package store

import (
	"context"

	"github.com/clinisense/clinisense/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

// DocumentIDsByPatient returns the IDs of all documents belonging to a
// patient. Satisfies the retrieval engine's metadata collaborator.
func (s *Store) DocumentIDsByPatient(ctx context.Context, patientID string) ([]string, error) {
	documents, err := s.driver.ListDocuments(ctx, &FindDocument{PatientID: &patientID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(documents))
	for i, document := range documents {
		ids[i] = document.ID
	}
	return ids, nil
}

func (s *Store) CreateDocument(ctx context.Context, create *Document) (*Document, error) {
	return s.driver.CreateDocument(ctx, create)
}

func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	documents, err := s.driver.ListDocuments(ctx, &FindDocument{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, nil
	}
	return documents[0], nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	return s.driver.DeleteDocument(ctx, id)
}

func (s *Store) CreateAnonymizationLog(ctx context.Context, create *AnonymizationLog) (*AnonymizationLog, error) {
	return s.driver.CreateAnonymizationLog(ctx, create)
}

func (s *Store) CreateQuestion(ctx context.Context, create *Question) (*Question, error) {
	return s.driver.CreateQuestion(ctx, create)
}
