package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/finance_tracker/internal/kv"
	"github.com/ivanoskov/finance_tracker/internal/mode"
	"github.com/ivanoskov/finance_tracker/internal/model"
	"github.com/ivanoskov/finance_tracker/internal/repository"
)

// fakeBackend запоминает вызовы и возвращает заготовленные ответы
type fakeBackend struct {
	name    string
	txns    []model.Transaction
	err     error
	panics  bool
	creates []model.Candidate
	deletes []string
	lists   int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) List(context.Context) ([]model.Transaction, error) {
	f.lists++
	if f.panics {
		panic("backend exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.txns, nil
}

func (f *fakeBackend) Create(_ context.Context, c model.Candidate) (model.Transaction, error) {
	f.creates = append(f.creates, c)
	if f.err != nil {
		return model.Transaction{}, f.err
	}
	t := c.WithID(f.name + "-1")
	f.txns = append(f.txns, t)
	return t, nil
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	return f.err
}

type staticResolver bool

func (r staticResolver) IsLocalMode(context.Context) bool { return bool(r) }

type stubProbe bool

func (p stubProbe) Available(context.Context) bool { return bool(p) }

func candidate(amount int64, category string, t model.TransactionType) model.Candidate {
	return model.Candidate{
		Amount:      decimal.NewFromInt(amount),
		Description: category + " entry",
		Category:    category,
		Type:        t,
		Date:        model.NewDate(2025, time.January, 10),
	}
}

func TestTransactionStore_DispatchesToExactlyOneBackend(t *testing.T) {
	ctx := context.Background()

	for _, local := range []bool{true, false} {
		localB := &fakeBackend{name: "local"}
		remoteB := &fakeBackend{name: "remote"}
		store := NewTransactionStore(localB, remoteB, staticResolver(local), nil)

		_, err := store.Create(ctx, candidate(10, "Food", model.Expense))
		require.NoError(t, err)
		_, err = store.List(ctx)
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, "x"))

		chosen, other := localB, remoteB
		if !local {
			chosen, other = remoteB, localB
		}
		assert.Len(t, chosen.creates, 1)
		assert.Equal(t, 1, chosen.lists)
		assert.Equal(t, []string{"x"}, chosen.deletes)
		assert.Empty(t, other.creates)
		assert.Zero(t, other.lists)
		assert.Empty(t, other.deletes)
		assert.Equal(t, chosen.name, store.Mode(ctx))
	}
}

func TestTransactionStore_NoFallbackOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	remoteErr := &model.RemoteError{Op: "list", Err: errors.New("connection reset")}
	localB := &fakeBackend{name: "local", txns: model.SampleTransactions()}
	remoteB := &fakeBackend{name: "remote", err: remoteErr}
	store := NewTransactionStore(localB, remoteB, staticResolver(false), nil)

	txns, err := store.List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRemote)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NotNil(t, txns)
	assert.Empty(t, txns)

	_, err = store.Create(ctx, candidate(10, "Food", model.Expense))
	assert.ErrorIs(t, err, model.ErrRemote)

	assert.Zero(t, localB.lists)
	assert.Empty(t, localB.creates)
	assert.Equal(t, 1, remoteB.lists, "no retry")
}

func TestTransactionStore_ValidatesBeforeAnyBackend(t *testing.T) {
	localB := &fakeBackend{name: "local"}
	store := NewTransactionStore(localB, nil, nil, nil)

	_, err := store.Create(context.Background(), candidate(-5, "Food", model.Expense))
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Empty(t, localB.creates)

	assert.ErrorIs(t, store.Delete(context.Background(), ""), model.ErrValidation)
	assert.Empty(t, localB.deletes)
}

func TestTransactionStore_RejectsMissingDate(t *testing.T) {
	localB := &fakeBackend{name: "local"}
	remoteB := &fakeBackend{name: "remote"}
	store := NewTransactionStore(localB, remoteB, staticResolver(false), nil)

	c := candidate(10, "Food", model.Expense)
	c.Date = model.Date{}
	_, err := store.Create(context.Background(), c)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)
	assert.Empty(t, remoteB.creates)
	assert.Empty(t, localB.creates)
}

func TestTransactionStore_NilRemoteAlwaysLocal(t *testing.T) {
	localB := &fakeBackend{name: "local"}
	store := NewTransactionStore(localB, nil, staticResolver(false), nil)
	assert.Equal(t, "local", store.Mode(context.Background()))
}

func TestTransactionStore_RecoversBackendPanic(t *testing.T) {
	store := NewTransactionStore(&fakeBackend{name: "local", panics: true}, nil, nil, nil)

	var (
		txns []model.Transaction
		err  error
	)
	assert.NotPanics(t, func() { txns, err = store.List(context.Background()) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend exploded")
	assert.Empty(t, txns)
}

func TestTransactionStore_DemoModeWritesLocallyEvenWhenRemoteIsUp(t *testing.T) {
	ctx := context.Background()
	device := kv.NewMemory()
	demo := mode.NewDemoFlag(device)
	require.NoError(t, demo.Set(ctx, true))

	local := repository.NewLocalRepository(device, nil)
	remoteB := &fakeBackend{name: "remote"}
	store := NewTransactionStore(local, remoteB, mode.NewResolver(demo, stubProbe(true)), nil)

	created, err := store.Create(ctx, candidate(500, "Food", model.Expense))
	require.NoError(t, err)

	assert.Empty(t, remoteB.creates, "remote must receive no write")
	txns, err := local.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, txns[len(txns)-1])

	// Выход из демо направляет следующий вызов в удаленный сервис
	require.NoError(t, demo.Clear(ctx))
	_, err = store.Create(ctx, candidate(1, "Food", model.Expense))
	require.NoError(t, err)
	assert.Len(t, remoteB.creates, 1)
}

func TestTransactionStore_ReadAfterWriteLocal(t *testing.T) {
	ctx := context.Background()
	local := repository.NewLocalRepository(kv.NewMemory(), nil)
	store := NewTransactionStore(local, nil, nil, nil)

	created, err := store.Create(ctx, candidate(42, "Shopping", model.Expense))
	require.NoError(t, err)
	txns, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, txns, created)

	require.NoError(t, store.Delete(ctx, created.ID))
	require.NoError(t, store.Delete(ctx, created.ID))
	txns, err = store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, txns, created)
}

func TestTransactionStore_BreakdownAfterInsert(t *testing.T) {
	ctx := context.Background()
	device := kv.NewMemory()
	require.NoError(t, device.Set(ctx, kv.TransactionsKey,
		[]byte(`[{"id":"p1","amount":300,"description":"Dinner","category":"Food","type":"expense","date":"2025-01-09"}]`)))
	store := NewTransactionStore(repository.NewLocalRepository(device, nil), nil, nil, nil)

	c, err := model.ParseCandidate("500", "Lunch", "Food", "expense", "2025-01-10")
	require.NoError(t, err)
	_, err = store.Create(ctx, c)
	require.NoError(t, err)

	txns, err := store.List(ctx)
	require.NoError(t, err)
	breakdown := CategoryBreakdown(txns)
	require.Len(t, breakdown, 1)
	assert.Equal(t, "Food", breakdown[0].Name)
	assert.True(t, breakdown[0].Total.Equal(decimal.NewFromInt(800)))
	assert.Equal(t, Palette[0], breakdown[0].Color)
}
