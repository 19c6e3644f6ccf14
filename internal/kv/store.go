// Package kv - хранилище ключ-значение на устройстве для локального режима.
package kv

import "context"

// Фиксированные ключи локального пространства имен
const (
	TransactionsKey = "finance-tracker-transactions"
	DemoModeKey     = "finance-tracker-demo-mode"
	SessionKey      = "finance-tracker-auth-session"
)

// Store - синхронное хранилище ключ-значение
type Store interface {
	// Get возвращает значение и признак наличия ключа
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set сохраняет значение, заменяя предыдущее
	Set(ctx context.Context, key string, value []byte) error
	// Delete удаляет ключ; удаление отсутствующего ключа не ошибка
	Delete(ctx context.Context, key string) error
}
