package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       BLOB NOT NULL,
	PRIMARY KEY (collection, id)
)`

// SQLite keeps every document as a BSON blob in one table. It is meant for
// single-node deployments and local development without MongoDB.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path. Use
// ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, collection, id string) (bson.Raw, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return bson.Raw(body), nil
}

func (s *SQLite) Set(ctx context.Context, collection, id string, doc any, opts SetOptions) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var base bson.Raw
	if opts.Merge {
		var body []byte
		err := tx.QueryRowContext(ctx,
			`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("get %s/%s: %w", collection, id, err)
		default:
			base = bson.Raw(body)
		}
	}

	body, err := compose(id, doc, base)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body`,
		collection, id, []byte(body))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLite) Add(ctx context.Context, collection string, doc any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, doc, SetOptions{}); err != nil {
		return "", err
	}
	return id, nil
}

// List filters in Go after reading the collection in insertion order.
func (s *SQLite) List(ctx context.Context, collection string, filter bson.M) ([]bson.Raw, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = ? ORDER BY rowid`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []bson.Raw
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		if matches(body, filter) {
			docs = append(docs, bson.Raw(body))
		}
	}
	return docs, rows.Err()
}

func (s *SQLite) Close(context.Context) error {
	return s.db.Close()
}
