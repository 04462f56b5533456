package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinisense/clinisense/store"
)

func (d *DB) CreateQuestion(ctx context.Context, create *store.Question) (*store.Question, error) {
	fields := []string{"question_text", "patient_id", "answer_text", "sources", "confidence", "created_ts"}
	args := []any{create.QuestionText, create.PatientID, create.AnswerText, create.Sources, create.Confidence, create.CreatedTs}

	stmt := `INSERT INTO question (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	return create, nil
}

func (d *DB) ListQuestions(ctx context.Context, find *store.FindQuestion) ([]*store.Question, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.PatientID != nil {
		where, args = append(where, "patient_id = ?"), append(args, *find.PatientID)
	}

	query := `SELECT id, question_text, patient_id, answer_text, sources, confidence, created_ts FROM question WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Question, 0)
	for rows.Next() {
		question := &store.Question{}
		if err := rows.Scan(&question.ID, &question.QuestionText, &question.PatientID, &question.AnswerText, &question.Sources, &question.Confidence, &question.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		list = append(list, question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	return list, nil
}
