package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "device.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// exerciseStore прогоняет одинаковые проверки контракта для любого Store
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, TransactionsKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, TransactionsKey, []byte(`[]`)))
	v, ok, err := s.Get(ctx, TransactionsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(v))

	require.NoError(t, s.Set(ctx, TransactionsKey, []byte(`[{"id":"1"}]`)))
	v, _, err = s.Get(ctx, TransactionsKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(v))

	require.NoError(t, s.Set(ctx, DemoModeKey, nil))
	v, ok, err = s.Get(ctx, DemoModeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)

	require.NoError(t, s.Delete(ctx, TransactionsKey))
	require.NoError(t, s.Delete(ctx, TransactionsKey))
	_, ok, err = s.Get(ctx, TransactionsKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("true")
	require.NoError(t, m.Set(ctx, DemoModeKey, buf))
	buf[0] = 'X'

	v, _, err := m.Get(ctx, DemoModeKey)
	require.NoError(t, err)
	assert.Equal(t, "true", string(v))
}

func TestSQLite(t *testing.T) {
	exerciseStore(t, openTestSQLite(t))
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "device.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, DemoModeKey, []byte("true")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, DemoModeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", string(v))
	assert.Equal(t, path, s.Path())
}
