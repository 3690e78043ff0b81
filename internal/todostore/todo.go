// Package todostore implements the client of the hosted per-user todos
// collection: query-by-owner, insert, and delete. The store assigns ids and
// creation timestamps; items are never updated in place.
package todostore

import (
	"context"
	"time"
)

// Todo is a user-owned text item, optionally referencing an uploaded image.
// OwnerID always equals the session identifier that created the item.
type Todo struct {
	ID        string
	Text      string
	OwnerID   string
	AssetURL  string
	CreatedAt time.Time
}

// Store defines the todo collection operations.
//
// Contract:
//   - List returns a finite snapshot of the owner's items, unordered; it
//     must never include an item belonging to another owner.
//   - Create inserts a new item and returns it with the store-assigned id
//     and timestamp.
//   - Delete removes an item by id; deleting an absent id fails with
//     apperr.ErrNotFound (deliberate choice, the underlying store does not
//     guarantee idempotency).
//
// Any transport, permission, or quota failure surfaces as
// apperr.ErrStoreUnavailable carrying the underlying message.
type Store interface {
	List(ctx context.Context, ownerID string) ([]*Todo, error)
	Create(ctx context.Context, ownerID, text, assetURL string) (*Todo, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
