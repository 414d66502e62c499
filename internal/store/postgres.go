package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const documentRowID = 1

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	id         INTEGER PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PgxPool is the subset of *pgxpool.Pool used by PostgresBackend.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend stores the document as a single JSONB row. Update locks the
// row for the whole load-mutate-save cycle, so concurrent writers from any
// process are serialized by the database.
type PostgresBackend struct {
	pool PgxPool
}

// NewPostgresBackend returns a backend on the given pool.
func NewPostgresBackend(pool PgxPool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

func (b *PostgresBackend) Init(ctx context.Context, seed *Document) error {
	if _, err := b.pool.Exec(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}

	body, err := json.Marshal(seed)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = b.pool.Exec(ctx,
		`INSERT INTO documents (id, body) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		documentRowID, body)
	if err != nil {
		return fmt.Errorf("insert seed document: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Load(ctx context.Context) (*Document, error) {
	return loadRow(ctx, b.pool, `SELECT body FROM documents WHERE id = $1`)
}

func (b *PostgresBackend) Save(ctx context.Context, doc *Document) error {
	return saveRow(ctx, b.pool, doc)
}

// Update implements Transactor.
func (b *PostgresBackend) Update(ctx context.Context, fn func(*Document) error) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	doc, err := loadRow(ctx, tx, `SELECT body FROM documents WHERE id = $1 FOR UPDATE`)
	if err != nil {
		return err
	}

	if err := fn(doc); err != nil {
		return err
	}

	if err := saveRow(ctx, tx, doc); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func loadRow(ctx context.Context, q rowQuerier, query string) (*Document, error) {
	var body []byte
	if err := q.QueryRow(ctx, query, documentRowID).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("select document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func saveRow(ctx context.Context, e execer, doc *Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tag, err := e.Exec(ctx,
		`UPDATE documents SET body = $2, updated_at = now() WHERE id = $1`,
		documentRowID, body)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotInitialized
	}
	return nil
}
