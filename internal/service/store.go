package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ivanoskov/finance_tracker/internal/log"
	"github.com/ivanoskov/finance_tracker/internal/model"
	"github.com/ivanoskov/finance_tracker/internal/repository"
)

// ModeResolver выбирает главный бэкенд для одного запроса
type ModeResolver interface {
	IsLocalMode(ctx context.Context) bool
}

// TransactionStore - единая точка входа для всех интерфейсов. Каждый вызов
// сначала спрашивает resolver и обслуживается ровно одним бэкендом:
// без переключения на другой и без повторов при ошибке.
type TransactionStore struct {
	local    repository.Backend
	remote   repository.Backend
	resolver ModeResolver
	logger   *log.Logger
}

// NewTransactionStore создает фасад. remote может быть nil, если удаленный
// сервис не настроен; тогда все запросы обслуживаются локально.
func NewTransactionStore(local, remote repository.Backend, resolver ModeResolver, logger *log.Logger) *TransactionStore {
	if logger == nil {
		logger = log.Nop()
	}
	return &TransactionStore{
		local:    local,
		remote:   remote,
		resolver: resolver,
		logger:   logger.WithComponent("store"),
	}
}

// Backend возвращает бэкенд, который обслужил бы запрос сейчас
func (s *TransactionStore) Backend(ctx context.Context) repository.Backend {
	if s.remote == nil || s.resolver == nil || s.resolver.IsLocalMode(ctx) {
		return s.local
	}
	return s.remote
}

// Mode возвращает имя текущего бэкенда, "local" или "remote"
func (s *TransactionStore) Mode(ctx context.Context) string {
	return s.Backend(ctx).Name()
}

// List возвращает все транзакции текущего владельца. При ошибке
// срез пустой, устаревшие данные не показываются.
func (s *TransactionStore) List(ctx context.Context) (txns []model.Transaction, err error) {
	defer recoverInto(&err)
	b := s.Backend(ctx)
	start := time.Now()

	txns, err = b.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "List failed", "backend", b.Name(), "error", err)
		return []model.Transaction{}, fmt.Errorf("list transactions: %w", err)
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	s.logger.DebugContext(ctx, "Listed transactions", "backend", b.Name(), "count", len(txns), "took", time.Since(start))
	return txns, nil
}

// Create проверяет кандидата и сохраняет его через выбранный бэкенд
func (s *TransactionStore) Create(ctx context.Context, candidate model.Candidate) (created model.Transaction, err error) {
	defer recoverInto(&err)
	if err := candidate.Validate(); err != nil {
		return model.Transaction{}, err
	}
	b := s.Backend(ctx)
	start := time.Now()

	created, err = b.Create(ctx, candidate)
	if err != nil {
		s.logger.ErrorContext(ctx, "Create failed", "backend", b.Name(), "error", err)
		return model.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction added", "backend", b.Name(), "id", created.ID, "took", time.Since(start))
	return created, nil
}

// Delete удаляет транзакцию с указанным id
func (s *TransactionStore) Delete(ctx context.Context, id string) (err error) {
	defer recoverInto(&err)
	if id == "" {
		return &model.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	b := s.Backend(ctx)

	if err := b.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Delete failed", "backend", b.Name(), "id", id, "error", err)
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", "backend", b.Name(), "id", id)
	return nil
}

// recoverInto превращает панику бэкенда в обычную ошибку
func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("transaction store: unexpected failure: %v", r)
	}
}
