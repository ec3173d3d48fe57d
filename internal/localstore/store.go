// Package localstore is the embedded backend: a private in-memory SQLite
// database restored from a Snapshot on Open and written back in full on
// Flush. Nothing reaches the snapshot until Flush is called, so callers
// flush after every mutation (or once after a batch) to make it durable.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"modernc.org/sqlite"

	"github.com/iliyamo/job-portal-manager/internal/database"
	"github.com/iliyamo/job-portal-manager/internal/model"
	"github.com/iliyamo/job-portal-manager/internal/repository"
)

// driverConn is the part of the modernc.org/sqlite connection used to move
// the whole database in and out of memory.
type driverConn interface {
	Serialize() ([]byte, error)
	NewRestore(srcURI string) (*sqlite.Backup, error)
}

// Store is an embedded database plus the sink it is flushed to.
type Store struct {
	db    *sql.DB
	snap  Snapshot
	dirty atomic.Bool
	mu    sync.Mutex // serializes Flush

	users   *Users
	portals *Portals
}

// Open creates the in-memory database, restores the last snapshot if there
// is one and brings the schema up to date.
func Open(ctx context.Context, snap Snapshot) (*Store, error) {
	db, err := database.OpenSQLite(database.MemoryPath)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, snap: snap}

	data, err := snap.Load(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(data) > 0 {
		if err := s.withRaw(ctx, func(c driverConn) error { return restore(c, data) }); err != nil {
			db.Close()
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
	}
	if err := database.Migrate(db, database.DialectSQLite); err != nil {
		db.Close()
		return nil, err
	}
	// a fresh or upgraded schema must reach the sink
	if len(data) == 0 {
		s.dirty.Store(true)
	}

	s.users = &Users{store: s, repo: repository.NewUserRepo(db)}
	s.portals = &Portals{store: s, repo: repository.NewPortalRepo(db)}
	return s, nil
}

// Users returns the user table view of the store.
func (s *Store) Users() *Users { return s.users }

// Portals returns the portal table view of the store.
func (s *Store) Portals() *Portals { return s.portals }

// Dirty reports whether there are changes not yet flushed.
func (s *Store) Dirty() bool { return s.dirty.Load() }

// Flush exports the entire database and saves it to the snapshot. It does
// nothing when no mutation happened since the last flush.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// cleared before the export so a write racing with it stays pending
	if !s.dirty.Swap(false) {
		return nil
	}
	var data []byte
	err := s.withRaw(ctx, func(c driverConn) error {
		var err error
		data, err = c.Serialize()
		return err
	})
	if err != nil {
		s.dirty.Store(true)
		return fmt.Errorf("serialize db: %w", err)
	}
	if err := s.snap.Save(ctx, data); err != nil {
		s.dirty.Store(true)
		return err
	}
	return nil
}

// Close flushes pending changes and releases the database.
func (s *Store) Close(ctx context.Context) error {
	ferr := s.Flush(ctx)
	return errors.Join(ferr, s.db.Close())
}

// Ping checks that the embedded database still answers.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) markDirty() { s.dirty.Store(true) }

func (s *Store) withRaw(ctx context.Context, fn func(driverConn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.Raw(func(dc any) error {
		c, ok := dc.(driverConn)
		if !ok {
			return fmt.Errorf("driver connection %T cannot serialize", dc)
		}
		return fn(c)
	})
}

// restore copies a serialized database into the connection through the
// SQLite backup API. The bytes are staged in a temp file because the backup
// source has to be a database the driver can open by name.
func restore(c driverConn, data []byte) error {
	f, err := os.CreateTemp("", "jobportal-restore-*.db")
	if err != nil {
		return err
	}
	name := f.Name()
	defer os.Remove(name)
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	bk, err := c.NewRestore(name)
	if err != nil {
		return err
	}
	for more := true; more; {
		if more, err = bk.Step(-1); err != nil {
			bk.Finish()
			return err
		}
	}
	return bk.Finish()
}

// Users adapts the user repository and marks the store dirty on writes.
type Users struct {
	store *Store
	repo  *repository.UserRepo
}

func (u *Users) Create(ctx context.Context, name, email, passwordHash string, createdAt time.Time) (uint64, error) {
	id, err := u.repo.Create(ctx, name, email, passwordHash, createdAt)
	if err != nil {
		return 0, err
	}
	u.store.markDirty()
	return id, nil
}

func (u *Users) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return u.repo.GetByEmail(ctx, email)
}

func (u *Users) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return u.repo.GetByID(ctx, id)
}

func (u *Users) Flush(ctx context.Context) error { return u.store.Flush(ctx) }

// Portals adapts the portal repository and marks the store dirty on writes.
type Portals struct {
	store *Store
	repo  *repository.PortalRepo
}

func (p *Portals) Create(ctx context.Context, userID uint64, category, link string) (uint64, error) {
	id, err := p.repo.Create(ctx, userID, category, link)
	if err != nil {
		return 0, err
	}
	p.store.markDirty()
	return id, nil
}

func (p *Portals) List(ctx context.Context, userID uint64) ([]model.Portal, error) {
	return p.repo.List(ctx, userID)
}

func (p *Portals) Get(ctx context.Context, userID, id uint64) (model.Portal, error) {
	return p.repo.Get(ctx, userID, id)
}

func (p *Portals) Update(ctx context.Context, userID, id uint64, patch model.PortalPatch) error {
	if err := p.repo.Update(ctx, userID, id, patch); err != nil {
		return err
	}
	p.store.markDirty()
	return nil
}

func (p *Portals) Delete(ctx context.Context, userID, id uint64) error {
	if err := p.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	p.store.markDirty()
	return nil
}

func (p *Portals) Categories(ctx context.Context, userID uint64) ([]string, error) {
	return p.repo.Categories(ctx, userID)
}

func (p *Portals) Flush(ctx context.Context) error { return p.store.Flush(ctx) }
