// Package audit persists anonymization and indexing events asynchronously.
// The pipelines report fire-and-forget; a full buffer drops the event
// rather than blocking a request.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/clinisense/clinisense/server/deid"
	"github.com/clinisense/clinisense/store"
)

const bufferSize = 256

type event struct {
	anonymization *deid.AnonymizationEvent
	indexedDocID  string
}

// Runner consumes audit events from a buffered channel and writes them to
// the store. It implements the deid and rag audit sink interfaces.
type Runner struct {
	store  *store.Store
	events chan event
}

// NewRunner creates an audit runner.
func NewRunner(store *store.Store) *Runner {
	return &Runner{
		store:  store,
		events: make(chan event, bufferSize),
	}
}

// Run consumes events until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	for {
		select {
		case ev := <-r.events:
			r.persist(ctx, ev)
		case <-ctx.Done():
			slog.Info("audit runner stopped")
			return
		}
	}
}

// RecordAnonymization enqueues an anonymization event. Never blocks.
func (r *Runner) RecordAnonymization(ev deid.AnonymizationEvent) {
	select {
	case r.events <- event{anonymization: &ev}:
	default:
		slog.Warn("audit buffer full, dropping anonymization event", "document_id", ev.DocumentID)
	}
}

// RecordIndexed enqueues an indexing event. Never blocks.
func (r *Runner) RecordIndexed(documentID string) {
	select {
	case r.events <- event{indexedDocID: documentID}:
	default:
		slog.Warn("audit buffer full, dropping index event", "document_id", documentID)
	}
}

func (r *Runner) persist(ctx context.Context, ev event) {
	if ev.anonymization != nil {
		entities, err := json.Marshal(ev.anonymization.Entities)
		if err != nil {
			entities = []byte("[]")
		}
		if _, err := r.store.CreateAnonymizationLog(ctx, &store.AnonymizationLog{
			DocumentID:     ev.anonymization.DocumentID,
			OriginalText:   ev.anonymization.OriginalText,
			AnonymizedText: ev.anonymization.AnonymizedText,
			Strategy:       string(ev.anonymization.Strategy),
			Entities:       string(entities),
			CreatedTs:      time.Now().Unix(),
		}); err != nil {
			slog.Error("failed to persist anonymization log", "error", err)
		}
		return
	}

	slog.Info("document indexed", "document_id", ev.indexedDocID)
}
