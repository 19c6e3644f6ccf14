package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/finance_tracker/internal/config"
	"github.com/ivanoskov/finance_tracker/internal/kv"
	"github.com/ivanoskov/finance_tracker/internal/model"
	"github.com/ivanoskov/finance_tracker/internal/repository"
)

func baseConfig(t *testing.T) *config.Config {
	return &config.Config{
		TransactionsTable: "transactions",
		ProfilesTable:     "profiles",
		DeviceDBPath:      filepath.Join(t.TempDir(), "device.db"),
		CurrencySymbol:    "₹",
		LogLevel:          "error",
		LogFormat:         "text",
	}
}

func TestNew_LocalOnly(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, baseConfig(t), NewLogger(baseConfig(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.Remote)
	assert.Equal(t, repository.LocalBackendName, a.Store.Mode(ctx))

	txns, err := a.Store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 10)
}

func TestNew_PersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig(t)

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	c, err := model.ParseCandidate("250", "Books", "Shopping", "expense", "2025-02-01")
	require.NoError(t, err)
	created, err := a.Store.Create(ctx, c)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	txns, err := b.Store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, txns, created)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := baseConfig(t)
	cfg.LogFormat = "xml"
	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "invalid LOG_FORMAT")
}

func TestNewWithDevice_RemoteAndDemo(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	cfg := baseConfig(t)
	cfg.SupabaseURL = srv.URL
	cfg.SupabaseKey = "service-key"
	cfg.SupabaseUserID = "6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b"

	a, err := NewWithDevice(ctx, cfg, kv.NewMemory(), nil)
	require.NoError(t, err)
	require.NotNil(t, a.Remote)
	assert.Equal(t, repository.RemoteBackendName, a.Store.Mode(ctx))

	txns, err := a.Store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)
	assert.Equal(t, int32(1), hits.Load())

	require.NoError(t, a.Demo.Set(ctx, true))
	assert.Equal(t, repository.LocalBackendName, a.Store.Mode(ctx))
	txns, err = a.Store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 10)
	assert.Equal(t, int32(1), hits.Load(), "demo mode never reaches the remote service")
}

func TestNewWithDevice_RemoteWithoutIdentityStaysLocal(t *testing.T) {
	cfg := baseConfig(t)
	cfg.SupabaseURL = "https://example.supabase.co"
	cfg.SupabaseKey = "anon"

	a, err := NewWithDevice(context.Background(), cfg, kv.NewMemory(), nil)
	require.NoError(t, err)
	require.NotNil(t, a.Remote)
	assert.Equal(t, repository.LocalBackendName, a.Store.Mode(context.Background()))
}

func TestNewWithDevice_RestoresSavedSession(t *testing.T) {
	ctx := context.Background()
	var authorization atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	cfg := baseConfig(t)
	cfg.SupabaseURL = srv.URL
	cfg.SupabaseKey = "anon"

	device := kv.NewMemory()
	session := `{"access_token":"saved-token","user_id":"6f1c2a3b-4d5e-4f60-8a7b-9c0d1e2f3a4b"}`
	require.NoError(t, device.Set(ctx, kv.SessionKey, []byte(session)))

	a, err := NewWithDevice(ctx, cfg, device, nil)
	require.NoError(t, err)
	require.NotNil(t, a.Account)
	assert.Equal(t, repository.RemoteBackendName, a.Store.Mode(ctx))

	_, err = a.Store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, authorization.Load(), "saved-token")

	require.NoError(t, a.Account.SignOut(ctx))
	assert.Equal(t, repository.LocalBackendName, a.Store.Mode(ctx), "sign-out applies without a restart")
}
