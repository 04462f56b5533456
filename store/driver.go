package store

import (
	"context"
	"database/sql"
)

// Document is the metadata record for an ingested clinical document. The
// text itself lives in the vector index; the store only keeps what search
// filtering and auditing need.
type Document struct {
	ID        string
	PatientID string
	Title     string
	CreatedTs int64
}

// FindDocument is the filter for listing documents.
type FindDocument struct {
	ID        *string
	PatientID *string
}

// AnonymizationLog records one anonymize call for the audit trail.
type AnonymizationLog struct {
	ID             int64
	DocumentID     string
	OriginalText   string
	AnonymizedText string
	Strategy       string
	// Entities is the detected-entity list serialized as JSON.
	Entities  string
	CreatedTs int64
}

// FindAnonymizationLog is the filter for listing anonymization logs.
type FindAnonymizationLog struct {
	DocumentID *string
}

// Question is one Q&A turn: the question asked and the synthesized answer
// with its sources and confidence.
type Question struct {
	ID           int64
	QuestionText string
	PatientID    string
	AnswerText   string
	// Sources is the retrieval result list serialized as JSON.
	Sources    string
	Confidence float64
	CreatedTs  int64
}

// FindQuestion is the filter for listing Q&A history.
type FindQuestion struct {
	PatientID *string
	Limit     *int
}

// Driver is an interface for store driver. It contains all methods that
// store database needs to implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	Migrate(ctx context.Context) error

	CreateDocument(ctx context.Context, create *Document) (*Document, error)
	ListDocuments(ctx context.Context, find *FindDocument) ([]*Document, error)
	DeleteDocument(ctx context.Context, id string) error

	CreateAnonymizationLog(ctx context.Context, create *AnonymizationLog) (*AnonymizationLog, error)
	ListAnonymizationLogs(ctx context.Context, find *FindAnonymizationLog) ([]*AnonymizationLog, error)

	CreateQuestion(ctx context.Context, create *Question) (*Question, error)
	ListQuestions(ctx context.Context, find *FindQuestion) ([]*Question, error)
}
