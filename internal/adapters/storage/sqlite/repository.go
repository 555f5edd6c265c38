// Package sqlite stores quote collections in a SQLite database through the
// pure-Go modernc driver. Several named collections can share one file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS quotes (
	collection TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	id         TEXT    NOT NULL,
	text       TEXT    NOT NULL,
	author     TEXT    NOT NULL DEFAULT '',
	tags       TEXT    NOT NULL DEFAULT '[]',
	fav        INTEGER NOT NULL DEFAULT 0,
	created    INTEGER NOT NULL,
	updated    INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS quotes_position ON quotes (collection, position);`

// Repository implements ports.QuoteRepository on one collection of a SQLite
// database. Persist replaces the collection inside a single transaction.
type Repository struct {
	db         *sql.DB
	collection string
}

// Open opens (creating if needed) the database at path and prepares the
// schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path, collection string) (*Repository, error) {
	if collection == "" {
		collection = domain.StorageKey
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Repository{db: db, collection: collection}, nil
}

// Collection returns the name of the collection this repository serves.
func (r *Repository) Collection() string {
	return r.collection
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Load returns the collection in stored order.
func (r *Repository) Load(ctx context.Context) ([]domain.QuoteRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, text, author, tags, fav, created, updated
		 FROM quotes WHERE collection = ? ORDER BY position`, r.collection)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()

	records := []domain.QuoteRecord{}
	for rows.Next() {
		var (
			rec  domain.QuoteRecord
			tags string
		)

		if err := rows.Scan(&rec.ID, &rec.Text, &rec.Author, &tags, &rec.Fav, &rec.Created, &rec.Updated); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}

		if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags of %s: %w", rec.ID, err)
		}

		if rec.Tags == nil {
			rec.Tags = []string{}
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotes: %w", err)
	}

	return records, nil
}

// Persist replaces the collection with records.
func (r *Repository) Persist(ctx context.Context, records []domain.QuoteRecord) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM quotes WHERE collection = ?`, r.collection); err != nil {
		return fmt.Errorf("clearing collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quotes (collection, position, id, text, author, tags, fav, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		tags, mErr := json.Marshal(nonNil(rec.Tags))
		if mErr != nil {
			err = mErr
			return fmt.Errorf("encoding tags of %s: %w", rec.ID, err)
		}

		if _, err = stmt.ExecContext(ctx, r.collection, i, rec.ID, rec.Text, rec.Author,
			string(tags), rec.Fav, rec.Created, rec.Updated); err != nil {
			return fmt.Errorf("inserting %s: %w", rec.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}

// Name identifies the repository in readiness checks.
func (r *Repository) Name() string {
	return "storage"
}

// Check pings the database.
func (r *Repository) Check(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}

	return tags
}
