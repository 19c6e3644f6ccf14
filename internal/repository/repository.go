package repository

import (
	"context"

	"github.com/ivanoskov/finance_tracker/internal/model"
)

// Backend определяет интерфейс для работы с хранилищем данных, локальным и удаленным.
// id записи назначает тот бэкенд, который ее создает.
type Backend interface {
	// Name - имя бэкенда в логах и интерфейсе
	Name() string
	List(ctx context.Context) ([]model.Transaction, error)
	Create(ctx context.Context, candidate model.Candidate) (model.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// Имена бэкендов, возвращаемые Name
const (
	LocalBackendName  = "local"
	RemoteBackendName = "remote"
)
