package todostore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/epavlov/todolite/internal/apperr"
	"github.com/epavlov/todolite/internal/dbx"
	"github.com/epavlov/todolite/internal/todostore/migrations"
)

// PostgresStore is a Store backed by the hosted Postgres that holds the
// todos collection.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to the hosted database, applies pending migrations, and
// returns a ready PostgresStore.
func Open(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return NewPostgresStore(db), nil
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *PostgresStore) conn() dbx.DBTX { return s.db }

// List returns every todo owned by ownerID. Ordering is whatever the store
// yields; callers must not rely on it.
func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]*Todo, error) {
	query :=
		`SELECT id, owner_id, text, asset_url, created_at FROM todos
		 WHERE owner_id = $1
		 `

	rows, err := s.conn().QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var result []*Todo
	for rows.Next() {
		t := &Todo{}
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Text, &t.AssetURL, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
	}

	return result, nil
}

// Create inserts a todo; the store assigns id and created_at and the full
// row is returned.
func (s *PostgresStore) Create(ctx context.Context, ownerID, text, assetURL string) (*Todo, error) {
	query :=
		`INSERT INTO todos (owner_id, text, asset_url)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	t := &Todo{OwnerID: ownerID, Text: text, AssetURL: assetURL}
	err := s.conn().QueryRowContext(ctx, query, ownerID, text, assetURL).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
	}

	return t, nil
}

// Delete removes a todo by id. A missing id yields apperr.ErrNotFound.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM todos WHERE id = $1`

	res, err := s.conn().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Close releases the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
