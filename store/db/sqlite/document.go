package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinisense/clinisense/store"
)

func (d *DB) CreateDocument(ctx context.Context, create *store.Document) (*store.Document, error) {
	fields := []string{"id", "patient_id", "title", "created_ts"}
	args := []any{create.ID, create.PatientID, create.Title, create.CreatedTs}

	stmt := `INSERT INTO document (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return create, nil
}

func (d *DB) ListDocuments(ctx context.Context, find *store.FindDocument) ([]*store.Document, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.PatientID != nil {
		where, args = append(where, "patient_id = ?"), append(args, *find.PatientID)
	}

	query := `SELECT id, patient_id, title, created_ts FROM document WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Document, 0)
	for rows.Next() {
		document := &store.Document{}
		if err := rows.Scan(&document.ID, &document.PatientID, &document.Title, &document.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		list = append(list, document)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteDocument(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM document WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
