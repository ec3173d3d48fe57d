// Package service holds the business rules shared by every storage backend:
// presence validation, password hashing, token issuance and the flush
// boundary of the embedded store. HTTP handlers and the CLI both call into
// these services and never talk to a backend directly.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/job-portal-manager/internal/model"
)

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, createdAt time.Time) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// PortalStore is the storage contract for a user's portals. Every method is
// scoped to userID; a portal owned by another user must be reported as
// apperr.ErrNotFound.
type PortalStore interface {
	Create(ctx context.Context, userID uint64, category, link string) (uint64, error)
	List(ctx context.Context, userID uint64) ([]model.Portal, error)
	Get(ctx context.Context, userID, id uint64) (model.Portal, error)
	Update(ctx context.Context, userID, id uint64, patch model.PortalPatch) error
	Delete(ctx context.Context, userID, id uint64) error
	Categories(ctx context.Context, userID uint64) ([]string, error)
}

// Flusher is implemented by backends that hold their data in memory and
// must export it after mutations to be durable.
type Flusher interface {
	Flush(ctx context.Context) error
}

func flush(ctx context.Context, store any) error {
	if f, ok := store.(Flusher); ok {
		return f.Flush(ctx)
	}
	return nil
}
