package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/ivanoskov/finance_tracker/internal/kv"
	"github.com/ivanoskov/finance_tracker/internal/log"
	"github.com/ivanoskov/finance_tracker/internal/model"
)

// LocalRepository хранит транзакции одного владельца одним JSON-массивом
// под фиксированным ключом устройства. Каждое изменение перезаписывает всю
// коллекцию; mu упорядочивает их, чтобы параллельные вызовы не теряли данные.
type LocalRepository struct {
	store  kv.Store
	key    string
	newID  func() string
	logger *log.Logger
	mu     sync.Mutex
}

// LocalOption настраивает LocalRepository
type LocalOption func(*LocalRepository)

// WithIDGenerator заменяет генератор ULID
func WithIDGenerator(fn func() string) LocalOption {
	return func(r *LocalRepository) { r.newID = fn }
}

// WithStorageKey хранит коллекцию под другим ключом
func WithStorageKey(key string) LocalOption {
	return func(r *LocalRepository) { r.key = key }
}

// NewLocalRepository создает движок устройства поверх store
func NewLocalRepository(store kv.Store, logger *log.Logger, opts ...LocalOption) *LocalRepository {
	if logger == nil {
		logger = log.Nop()
	}
	r := &LocalRepository{
		store:  store,
		key:    kv.TransactionsKey,
		newID:  func() string { return ulid.Make().String() },
		logger: logger.WithComponent("local"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *LocalRepository) Name() string {
	return LocalBackendName
}

// Initialize заполняет демо-данными пустое пространство имен.
// Повторный вызов ничего не делает.
func (r *LocalRepository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialize(ctx)
}

func (r *LocalRepository) initialize(ctx context.Context) error {
	_, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return &model.StorageError{Op: "read", Err: err}
	}
	if ok {
		return nil
	}
	if err := r.save(ctx, model.SampleTransactions()); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Seeded local namespace with sample data", "key", r.key)
	return nil
}

// List возвращает коллекцию в порядке хранения. При ошибке
// срез пустой, но не nil.
func (r *LocalRepository) List(ctx context.Context) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txns, err := r.load(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to load local transactions", "error", err)
		return []model.Transaction{}, err
	}
	return txns, nil
}

// Insert проверяет кандидата, назначает новый id и добавляет его
func (r *LocalRepository) Insert(ctx context.Context, candidate model.Candidate) (model.Transaction, error) {
	if err := candidate.Validate(); err != nil {
		return model.Transaction{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	txns, err := r.load(ctx)
	if err != nil {
		return model.Transaction{}, err
	}

	created := candidate.WithID(r.newID())
	txns = append(txns, created)
	if err := r.save(ctx, txns); err != nil {
		return model.Transaction{}, err
	}

	r.logger.InfoContext(ctx, "Transaction saved locally",
		"id", created.ID,
		"type", created.Type,
		"category", created.Category,
		"amount", created.Amount.String())
	return created, nil
}

// Create реализует Backend
func (r *LocalRepository) Create(ctx context.Context, candidate model.Candidate) (model.Transaction, error) {
	return r.Insert(ctx, candidate)
}

// DeleteByID удаляет запись, если она есть. Отсутствующий id не ошибка.
func (r *LocalRepository) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txns, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if err := r.save(ctx, kept); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Transaction deleted locally", "id", id, "removed", len(txns)-len(kept))
	return nil
}

// Delete реализует Backend
func (r *LocalRepository) Delete(ctx context.Context, id string) error {
	return r.DeleteByID(ctx, id)
}

// Update применяет patch к записи с указанным id
func (r *LocalRepository) Update(ctx context.Context, id string, patch model.Patch) (model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txns, err := r.load(ctx)
	if err != nil {
		return model.Transaction{}, err
	}

	for i, t := range txns {
		if t.ID != id {
			continue
		}
		updated := patch.Apply(t)
		if err := updated.Candidate().Validate(); err != nil {
			return model.Transaction{}, err
		}
		txns[i] = updated
		if err := r.save(ctx, txns); err != nil {
			return model.Transaction{}, err
		}
		r.logger.InfoContext(ctx, "Transaction updated locally", "id", id)
		return updated, nil
	}
	return model.Transaction{}, &model.NotFoundError{ID: id}
}

// ResetToSampleData перезаписывает коллекцию демо-данными
func (r *LocalRepository) ResetToSampleData(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.save(ctx, model.SampleTransactions()); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Local namespace reset to sample data")
	return nil
}

// ClearAll удаляет пространство имен. Следующее чтение заполнит его заново.
func (r *LocalRepository) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, r.key); err != nil {
		return &model.StorageError{Op: "delete", Err: err}
	}
	r.logger.InfoContext(ctx, "Local namespace cleared")
	return nil
}

// load вызывается под mu
func (r *LocalRepository) load(ctx context.Context) ([]model.Transaction, error) {
	if err := r.initialize(ctx); err != nil {
		return nil, err
	}

	data, _, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, &model.StorageError{Op: "read", Err: err}
	}

	txns := []model.Transaction{}
	if len(data) == 0 {
		return txns, nil
	}
	if err := json.Unmarshal(data, &txns); err != nil {
		return nil, &model.StorageError{Op: "decode", Err: err}
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	return txns, nil
}

func (r *LocalRepository) save(ctx context.Context, txns []model.Transaction) error {
	data, err := json.Marshal(txns)
	if err != nil {
		return &model.StorageError{Op: "encode", Err: err}
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return &model.StorageError{Op: "write", Err: err}
	}
	return nil
}
