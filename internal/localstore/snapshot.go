package localstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// Snapshot is where the serialized database lives between runs. Load
// returns nil data and no error when nothing has been saved yet.
type Snapshot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileSnapshot keeps the database image in a single file.
type FileSnapshot struct {
	Path string
}

func (f FileSnapshot) Load(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Save writes to a temp file next to Path and renames it into place, so a
// crash never leaves a truncated image behind.
func (f FileSnapshot) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// DefaultRedisKey is used when RedisSnapshot.Key is empty.
const DefaultRedisKey = "jobportal:db"

// RedisSnapshot keeps the database image under one Redis key, the
// key-value analogue of browser local storage.
type RedisSnapshot struct {
	Client redis.Cmdable
	Key    string
}

func (r RedisSnapshot) key() string {
	if r.Key == "" {
		return DefaultRedisKey
	}
	return r.Key
}

func (r RedisSnapshot) Load(ctx context.Context) ([]byte, error) {
	data, err := r.Client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}
	return data, nil
}

func (r RedisSnapshot) Save(ctx context.Context, data []byte) error {
	if err := r.Client.Set(ctx, r.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}
