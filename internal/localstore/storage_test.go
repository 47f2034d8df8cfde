package localstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	ctx := context.Background()

	file, err := NewFileStorage(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)

	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	lite, err := NewSQLiteStorage(ctx, db)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rs, err := NewRedisStorage(ctx, mr.Addr(), "", 0, "")
	require.NoError(t, err)
	t.Cleanup(func() { rs.Close() })

	return map[string]Storage{"file": file, "sqlite": lite, "redis": rs}
}

func TestStorageGetSetRemove(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.GetItem(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.SetItem(ctx, "k", "v1"))
			v, ok, err := s.GetItem(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v1", v)

			require.NoError(t, s.SetItem(ctx, "k", "v2"))
			v, _, err = s.GetItem(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", v)

			require.NoError(t, s.RemoveItem(ctx, "k"))
			_, ok, err = s.GetItem(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.RemoveItem(ctx, "k"), "removing a missing key")
		})
	}
}

func TestLoginFlag(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			flag := NewLoginFlag(s)

			present, err := flag.Present(ctx)
			require.NoError(t, err)
			assert.False(t, present)

			require.NoError(t, flag.Set(ctx))
			present, err = flag.Present(ctx)
			require.NoError(t, err)
			assert.True(t, present)

			v, _, err := s.GetItem(ctx, LoginFlagKey)
			require.NoError(t, err)
			assert.Equal(t, "true", v)

			require.NoError(t, flag.Clear(ctx))
			present, err = flag.Present(ctx)
			require.NoError(t, err)
			assert.False(t, present)
		})
	}
}

func TestLoginFlagEmptyValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStorage(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, LoginFlagKey, ""))

	present, err := NewLoginFlag(s).Present(ctx)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestFileStoragePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	first, err := NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, first.SetItem(ctx, "cookies", "[]"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := NewFileStorage(path)
	require.NoError(t, err)
	v, ok, err := second.GetItem(ctx, "cookies")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestFileStorageCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s, err := NewFileStorage(path)
	require.NoError(t, err)
	_, _, err = s.GetItem(context.Background(), "k")
	assert.Error(t, err)
}

func TestFileStorageNullFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0600))

	s, err := NewFileStorage(path)
	require.NoError(t, err)
	_, ok, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, NewLoginFlag(s).Set(ctx))
	present, err := NewLoginFlag(s).Present(ctx)
	require.NoError(t, err)
	assert.True(t, present)
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ojcli.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.SetItem(ctx, LoginFlagKey, "true"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	v, ok, err := second.GetItem(ctx, LoginFlagKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestRedisStorageUsesPrefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStorageFromClient(client, "team:")
	defer s.Close()

	require.NoError(t, s.SetItem(ctx, "isLoggedIn", "true"))
	got, err := mr.Get("team:isLoggedIn")
	require.NoError(t, err)
	assert.Equal(t, "true", got)
}

func TestRedisStorageUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStorage(context.Background(), addr, "", 0, "")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, Options{Path: filepath.Join(dir, "storage.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, s)

	s, err = Open(ctx, Options{Driver: "sqlite", Path: filepath.Join(dir, "ojcli.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStorage{}, s)
	require.NoError(t, s.Close())

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Options{Driver: "redis", RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStorage{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Driver: "etcd"})
	assert.True(t, errors.Is(err, ErrUnknownDriver))
}
