package localstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Storage is a string key/value store that survives process restarts.
// GetItem reports ok=false for a missing key; RemoveItem on a missing key is not an error.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver        string // file, sqlite or redis
	Path          string // file and sqlite
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Storage, error) {
	var (
		s   Storage
		err error
	)
	switch opts.Driver {
	case "", "file":
		s, err = NewFileStorage(opts.Path)
	case "sqlite":
		s, err = OpenSQLite(ctx, opts.Path)
	case "redis":
		s, err = NewRedisStorage(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("localstore.Open: %w: %q", ErrUnknownDriver, opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
