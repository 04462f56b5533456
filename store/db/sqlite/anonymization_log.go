package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinisense/clinisense/store"
)

func (d *DB) CreateAnonymizationLog(ctx context.Context, create *store.AnonymizationLog) (*store.AnonymizationLog, error) {
	fields := []string{"document_id", "original_text", "anonymized_text", "strategy", "entities", "created_ts"}
	args := []any{create.DocumentID, create.OriginalText, create.AnonymizedText, create.Strategy, create.Entities, create.CreatedTs}

	stmt := `INSERT INTO anonymization_log (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create anonymization_log: %w", err)
	}

	return create, nil
}

func (d *DB) ListAnonymizationLogs(ctx context.Context, find *store.FindAnonymizationLog) ([]*store.AnonymizationLog, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.DocumentID != nil {
		where, args = append(where, "document_id = ?"), append(args, *find.DocumentID)
	}

	query := `SELECT id, document_id, original_text, anonymized_text, strategy, entities, created_ts FROM anonymization_log WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list anonymization_logs: %w", err)
	}
	defer rows.Close()

	list := make([]*store.AnonymizationLog, 0)
	for rows.Next() {
		log := &store.AnonymizationLog{}
		if err := rows.Scan(&log.ID, &log.DocumentID, &log.OriginalText, &log.AnonymizedText, &log.Strategy, &log.Entities, &log.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan anonymization_log: %w", err)
		}
		list = append(list, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate anonymization_logs: %w", err)
	}

	return list, nil
}
