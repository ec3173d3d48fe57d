package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/job-portal-manager/internal/apperr"
	"github.com/iliyamo/job-portal-manager/internal/model"
)

// ErrPortalNotFound covers both a missing portal and one owned by another user.
var ErrPortalNotFound = apperr.NotFound("Portal not found")

// PortalRepo encapsulates all database queries related to portals.
type PortalRepo struct {
	db  DBTX
	now func() time.Time
}

// NewPortalRepo constructs a PortalRepo with the provided DB handle.
func NewPortalRepo(db DBTX) *PortalRepo {
	return &PortalRepo{db: db, now: time.Now}
}

// WithClock replaces the timestamp source used for created_at/updated_at.
func (r *PortalRepo) WithClock(now func() time.Time) *PortalRepo {
	r.now = now
	return r
}

const portalColumns = "id, category, link, user_id, created_at, updated_at"

// Create inserts a new portal for userID and returns its id.
func (r *PortalRepo) Create(ctx context.Context, userID uint64, category, link string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO portals (category, link, user_id, created_at) VALUES (?, ?, ?, ?)",
		category, link, userID, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert portal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert portal: %w", err)
	}
	return uint64(id), nil
}

// List returns the user's portals ordered by category, newest first within
// a category. id breaks ties between rows created in the same instant.
func (r *PortalRepo) List(ctx context.Context, userID uint64) ([]model.Portal, error) {
	q := `SELECT ` + portalColumns + `
	      FROM portals WHERE user_id = ?
	      ORDER BY category ASC, created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list portals: %w", err)
	}
	defer rows.Close()

	out := make([]model.Portal, 0)
	for rows.Next() {
		p, err := scanPortal(rows)
		if err != nil {
			return nil, fmt.Errorf("list portals: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list portals: %w", err)
	}
	return out, nil
}

// Get fetches a portal by id but only if it belongs to userID.
func (r *PortalRepo) Get(ctx context.Context, userID, id uint64) (model.Portal, error) {
	q := `SELECT ` + portalColumns + ` FROM portals WHERE id = ? AND user_id = ?`
	p, err := scanPortal(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portal{}, ErrPortalNotFound
		}
		return model.Portal{}, fmt.Errorf("get portal: %w", err)
	}
	return p, nil
}

// Update applies the supplied fields of patch and always stamps updated_at.
// It is a single statement filtered on id and owner; zero matched rows
// means not found.
func (r *PortalRepo) Update(ctx context.Context, userID, id uint64, patch model.PortalPatch) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Link != nil {
		sets = append(sets, "link = ?")
		args = append(args, *patch.Link)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now().UTC(), id, userID)

	q := "UPDATE portals SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update portal: %w", err)
	}
	return requireAffected(res, "update portal")
}

// Delete removes the portal if it belongs to userID. Deleting an id twice
// reports not found the second time.
func (r *PortalRepo) Delete(ctx context.Context, userID, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM portals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete portal: %w", err)
	}
	return requireAffected(res, "delete portal")
}

// Categories returns the distinct category labels of the user, ascending.
func (r *PortalRepo) Categories(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM portals WHERE user_id = ? ORDER BY category", userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPortal(s rowScanner) (model.Portal, error) {
	var (
		p       model.Portal
		updated sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Category, &p.Link, &p.UserID, &p.CreatedAt, &updated); err != nil {
		return model.Portal{}, err
	}
	if updated.Valid {
		t := updated.Time
		p.UpdatedAt = &t
	}
	return p, nil
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrPortalNotFound
	}
	return nil
}
