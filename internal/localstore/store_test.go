package localstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/job-portal-manager/internal/apperr"
)

// countingSnapshot records how often Save is called.
type countingSnapshot struct {
	data  []byte
	saves int
}

func (c *countingSnapshot) Load(context.Context) ([]byte, error) { return c.data, nil }

func (c *countingSnapshot) Save(_ context.Context, data []byte) error {
	c.saves++
	c.data = append([]byte(nil), data...)
	return nil
}

func openStore(t *testing.T, snap Snapshot) *Store {
	t.Helper()
	s, err := Open(context.Background(), snap)
	require.NoError(t, err)
	return s
}

func TestStore_FlushRoundTripFile(t *testing.T) {
	ctx := context.Background()
	snap := FileSnapshot{Path: filepath.Join(t.TempDir(), "data", "jobportal.db")}

	s := openStore(t, snap)
	uid, err := s.Users().Create(ctx, "Alice", "a@x.com", "hash", time.Now())
	require.NoError(t, err)
	pid, err := s.Portals().Create(ctx, uid, "QA", "indeed.com")
	require.NoError(t, err)
	require.True(t, s.Dirty())
	require.NoError(t, s.Portals().Flush(ctx))
	assert.False(t, s.Dirty())
	require.NoError(t, s.db.Close())

	_, err = os.Stat(snap.Path)
	require.NoError(t, err)

	reopened := openStore(t, snap)
	defer reopened.Close(ctx)
	p, err := reopened.Portals().Get(ctx, uid, pid)
	require.NoError(t, err)
	assert.Equal(t, "QA", p.Category)
	assert.Equal(t, "indeed.com", p.Link)

	u, err := reopened.Users().GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, uid, u.ID)
}

func TestStore_UnflushedChangesAreLost(t *testing.T) {
	ctx := context.Background()
	snap := &countingSnapshot{}

	s := openStore(t, snap)
	uid, err := s.Users().Create(ctx, "Alice", "a@x.com", "hash", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))

	_, err = s.Portals().Create(ctx, uid, "QA", "indeed.com")
	require.NoError(t, err)
	require.NoError(t, s.db.Close())

	reopened := openStore(t, snap)
	list, err := reopened.Portals().List(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_FlushCleanIsNoop(t *testing.T) {
	ctx := context.Background()
	snap := &countingSnapshot{}

	s := openStore(t, snap)
	defer s.db.Close()
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 1, snap.saves, "fresh schema is written once")

	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 1, snap.saves)

	// reads and failed writes do not dirty the store
	_, err := s.Portals().List(ctx, 1)
	require.NoError(t, err)
	err = s.Portals().Delete(ctx, 1, 99)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 1, snap.saves)
}

func TestStore_RestoredIdsAreNotReused(t *testing.T) {
	ctx := context.Background()
	snap := &countingSnapshot{}

	s := openStore(t, snap)
	uid, err := s.Users().Create(ctx, "Alice", "a@x.com", "hash", time.Now())
	require.NoError(t, err)
	first, err := s.Portals().Create(ctx, uid, "QA", "indeed.com")
	require.NoError(t, err)
	require.NoError(t, s.Portals().Delete(ctx, uid, first))
	require.NoError(t, s.Close(ctx))

	reopened := openStore(t, snap)
	defer reopened.Close(ctx)
	second, err := reopened.Portals().Create(ctx, uid, "QA", "linkedin.com")
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestStore_ReopenFromSnapshotAndClose(t *testing.T) {
	ctx := context.Background()
	snap := FileSnapshot{Path: filepath.Join(t.TempDir(), "jobportal.db")}

	for i := range 3 {
		s := openStore(t, snap)
		_, err := s.Users().Create(ctx, "User", fmt.Sprintf("u%d@x.com", i), "hash", time.Now())
		require.NoError(t, err)
		require.NoError(t, s.Close(ctx))
	}

	s := openStore(t, snap)
	for i := range 3 {
		_, err := s.Users().GetByEmail(ctx, fmt.Sprintf("u%d@x.com", i))
		require.NoError(t, err)
	}
	require.NoError(t, s.Close(ctx))
}

// failingSnapshot fails Save until fail is cleared.
type failingSnapshot struct {
	countingSnapshot
	fail bool
}

func (f *failingSnapshot) Save(ctx context.Context, data []byte) error {
	if f.fail {
		return errors.New("sink unavailable")
	}
	return f.countingSnapshot.Save(ctx, data)
}

func TestStore_FailedFlushKeepsChangesPending(t *testing.T) {
	ctx := context.Background()
	snap := &failingSnapshot{fail: true}

	s := openStore(t, snap)
	defer s.db.Close()
	_, err := s.Users().Create(ctx, "Alice", "a@x.com", "hash", time.Now())
	require.NoError(t, err)

	require.Error(t, s.Flush(ctx))
	assert.True(t, s.Dirty())

	snap.fail = false
	require.NoError(t, s.Flush(ctx))
	assert.False(t, s.Dirty())
	assert.Equal(t, 1, snap.saves)
}

func TestRedisSnapshot(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	snap := RedisSnapshot{Client: rdb}

	data, err := snap.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	s := openStore(t, snap)
	uid, err := s.Users().Create(ctx, "Bob", "b@x.com", "hash", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))
	assert.True(t, mr.Exists(DefaultRedisKey))

	reopened := openStore(t, snap)
	defer reopened.Close(ctx)
	u, err := reopened.Users().GetByID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)
}

func TestFileSnapshot_MissingFile(t *testing.T) {
	data, err := FileSnapshot{Path: filepath.Join(t.TempDir(), "absent.db")}.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}
