package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clinisense/clinisense/store"
)

func TestDocumentStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateDocument(ctx, &store.Document{
		ID:        "doc-1",
		PatientID: "patient-1",
		Title:     "Consultation note",
		CreatedTs: time.Now().Unix(),
	})
	require.NoError(t, err)
	require.Equal(t, "doc-1", created.ID)

	fetched, err := ts.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, "patient-1", fetched.PatientID)
	require.Equal(t, "Consultation note", fetched.Title)

	// Unknown ID returns nil without error.
	missing, err := ts.GetDocument(ctx, "doc-404")
	require.NoError(t, err)
	require.Nil(t, missing)

	err = ts.DeleteDocument(ctx, "doc-1")
	require.NoError(t, err)

	deleted, err := ts.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Nil(t, deleted)

	// Deleting again is idempotent.
	require.NoError(t, ts.DeleteDocument(ctx, "doc-1"))
}

func TestDocumentIDsByPatient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	now := time.Now().Unix()
	documents := []*store.Document{
		{ID: "doc-1", PatientID: "patient-1", Title: "Admission", CreatedTs: now},
		{ID: "doc-2", PatientID: "patient-1", Title: "Discharge", CreatedTs: now + 1},
		{ID: "doc-3", PatientID: "patient-2", Title: "Follow-up", CreatedTs: now + 2},
	}
	for _, document := range documents {
		_, err := ts.CreateDocument(ctx, document)
		require.NoError(t, err)
	}

	ids, err := ts.DocumentIDsByPatient(ctx, "patient-1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"doc-1", "doc-2"}, ids)

	ids, err = ts.DocumentIDsByPatient(ctx, "patient-2")
	require.NoError(t, err)
	require.Equal(t, []string{"doc-3"}, ids)

	ids, err = ts.DocumentIDsByPatient(ctx, "patient-404")
	require.NoError(t, err)
	require.Empty(t, ids)
}
