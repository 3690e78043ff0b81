// Package localstate persists display-only client state (the signed-in
// user's email) in a local SQLite database. Nothing stored here is a
// session token or an authorization input.
package localstate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/epavlov/todolite/internal/dbx"
	"github.com/epavlov/todolite/internal/filex"
	"github.com/epavlov/todolite/internal/localstate/migrations"
)

const emailKey = "email"

// Cache is a small key/value store with typed accessors for the fields the
// client actually caches.
type Cache struct {
	db *sql.DB
}

// Open creates (or opens) the cache database at path and applies pending
// migrations.
func Open(ctx context.Context, path string) (*Cache, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("cache dir error: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache open error: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("cache migration error: %w", err)
	}
	return &Cache{db: db}, nil
}

// NewCache wraps an already-open database handle.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (c *Cache) conn() dbx.DBTX { return c.db }

func (c *Cache) get(ctx context.Context, key string) (string, error) {
	var value string
	err := c.conn().QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (c *Cache) set(ctx context.Context, key, value string) error {
	_, err := c.conn().ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

// Email returns the cached signed-in email, empty when none is cached.
func (c *Cache) Email(ctx context.Context) (string, error) {
	return c.get(ctx, emailKey)
}

// SetEmail caches the signed-in email for greeting display.
func (c *Cache) SetEmail(ctx context.Context, email string) error {
	return c.set(ctx, emailKey, email)
}

// Clear wipes all cached state, used on sign-out.
func (c *Cache) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM metadata`)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
