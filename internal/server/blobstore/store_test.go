package blobstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	blob := bytes.Repeat([]byte{0x00, 0xff, 0x7f}, 4096)
	require.NoError(t, s.Put(ctx, "uploads/2026/04/02/a", blob))

	got, err := s.Get(ctx, "uploads/2026/04/02/a")
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	got[0] = 0x42
	again, err := s.Get(ctx, "uploads/2026/04/02/a")
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), again[0], "returned slices must not alias stored data")

	_, err = s.Get(ctx, "uploads/missing")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, s.Delete(ctx, "uploads/2026/04/02/a"))
	_, err = s.Get(ctx, "uploads/2026/04/02/a")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, s.Delete(ctx, "uploads/never-existed"))
	require.NoError(t, s.Close())
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	assert.Zero(t, s.Len())
}

func TestBadgerStore_InMemory(t *testing.T) {
	s, err := NewBadgerStore("")
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestBadgerStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "k", []byte("persisted")))
	require.NoError(t, s.Close())

	s, err = NewBadgerStore(dir)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Backend: BackendBadger})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Backend: "ftp"})
	require.Error(t, err)

	_, err = Open(ctx, Options{Backend: BackendS3})
	require.Error(t, err, "bucket is required")
}
