package model

import (
	"errors"
	"fmt"
)

// Сигнальные ошибки, с которыми типизированные ошибки ниже совпадают через errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrStorage    = errors.New("device storage failure")
	ErrNotFound   = errors.New("transaction not found")
	ErrRemote     = errors.New("remote service failure")
)

// ValidationError отклоняет некорректного кандидата до любого бэкенда.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError оборачивает сбой чтения, декодирования или записи на устройстве.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("device storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NotFoundError возвращается, если обновление ссылается на несуществующий id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// RemoteError передает сообщение удаленного сервиса как есть.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
