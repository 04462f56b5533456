package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/clinisense/clinisense/internal/profile"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by its DSN in the given profile.
func NewDB(profile *profile.Profile) (*DB, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// WAL keeps readers unblocked during audit writes; busy_timeout covers
	// the remaining writer contention.
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS document (
	id TEXT PRIMARY KEY,
	patient_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_document_patient_id ON document (patient_id);

CREATE TABLE IF NOT EXISTS anonymization_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id TEXT NOT NULL DEFAULT '',
	original_text TEXT NOT NULL,
	anonymized_text TEXT NOT NULL,
	strategy TEXT NOT NULL,
	entities TEXT NOT NULL DEFAULT '[]',
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS question (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question_text TEXT NOT NULL,
	patient_id TEXT NOT NULL DEFAULT '',
	answer_text TEXT NOT NULL DEFAULT '',
	sources TEXT NOT NULL DEFAULT '[]',
	confidence REAL NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);
`

// Migrate creates the schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
