// Package mode на каждый запрос решает, какой бэкенд главный.
package mode

import (
	"context"
	"fmt"

	"github.com/ivanoskov/finance_tracker/internal/kv"
)

// Probe сообщает, доступен ли удаленный сервис и выполнен ли вход
type Probe interface {
	Available(ctx context.Context) bool
}

// Session - выбор режима пользователя на момент запроса
type Session struct {
	DemoMode bool
}

// IsLocalMode - чистое решение о режиме: локальный, если пользователь выбрал
// демо-данные или удаленный сервис не может обслужить запрос.
func IsLocalMode(ctx context.Context, session Session, probe Probe) bool {
	if session.DemoMode {
		return true
	}
	return probe == nil || !probe.Available(ctx)
}

// DemoFlag - флаг демо-режима в хранилище устройства. Включает его
// только строка "true".
type DemoFlag struct {
	store kv.Store
}

func NewDemoFlag(store kv.Store) *DemoFlag {
	return &DemoFlag{store: store}
}

// Enabled читает флаг. Ошибка хранилища читается как включенный флаг,
// и записи не уходят в удаленный сервис.
func (f *DemoFlag) Enabled(ctx context.Context) (bool, error) {
	v, ok, err := f.store.Get(ctx, kv.DemoModeKey)
	if err != nil {
		return true, fmt.Errorf("read demo flag: %w", err)
	}
	return ok && string(v) == "true", nil
}

// Set сохраняет флаг как "true"/"false"
func (f *DemoFlag) Set(ctx context.Context, enabled bool) error {
	v := "false"
	if enabled {
		v = "true"
	}
	if err := f.store.Set(ctx, kv.DemoModeKey, []byte(v)); err != nil {
		return fmt.Errorf("write demo flag: %w", err)
	}
	return nil
}

// Clear удаляет флаг целиком, как при выходе
func (f *DemoFlag) Clear(ctx context.Context) error {
	if err := f.store.Delete(ctx, kv.DemoModeKey); err != nil {
		return fmt.Errorf("clear demo flag: %w", err)
	}
	return nil
}

// Resolver пересобирает сессию при каждом вызове. Ничего не кэшируется:
// вход или переключение демо действуют со следующей операции.
type Resolver struct {
	demo  *DemoFlag
	probe Probe
}

func NewResolver(demo *DemoFlag, probe Probe) *Resolver {
	return &Resolver{demo: demo, probe: probe}
}

// Session возвращает текущую сессию
func (r *Resolver) Session(ctx context.Context) (Session, error) {
	if r.demo == nil {
		return Session{}, nil
	}
	enabled, err := r.demo.Enabled(ctx)
	return Session{DemoMode: enabled}, err
}

// IsLocalMode сообщает, должен ли запрос обслужить локальный движок
func (r *Resolver) IsLocalMode(ctx context.Context) bool {
	session, _ := r.Session(ctx)
	return IsLocalMode(ctx, session, r.probe)
}
