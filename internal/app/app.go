// Package app собирает конфигурацию, хранилище и бэкенды в одно хранилище транзакций.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ivanoskov/finance_tracker/internal/charts"
	"github.com/ivanoskov/finance_tracker/internal/config"
	"github.com/ivanoskov/finance_tracker/internal/kv"
	"github.com/ivanoskov/finance_tracker/internal/log"
	"github.com/ivanoskov/finance_tracker/internal/mode"
	"github.com/ivanoskov/finance_tracker/internal/repository"
	"github.com/ivanoskov/finance_tracker/internal/service"
)

// App хранит все долгоживущие компоненты процесса
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Device   kv.Store
	Local    *repository.LocalRepository
	Remote   *repository.SupabaseRepository // nil, если не настроен
	Profiles *repository.ProfileRepository  // nil, если не настроен
	Demo     *mode.DemoFlag
	Resolver *mode.Resolver
	Store    *service.TransactionStore
	Account  *service.AccountService
	Charts   *charts.ChartGenerator

	closers []io.Closer
}

// NewLogger создает логгер процесса по конфигурации
func NewLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	return log.New(lc)
}

// New проверяет cfg, открывает базу устройства и собирает хранилище
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	device, err := kv.OpenSQLite(cfg.DeviceDBPath)
	if err != nil {
		return nil, fmt.Errorf("open device storage: %w", err)
	}
	a, err := NewWithDevice(ctx, cfg, device, logger)
	if err != nil {
		device.Close()
		return nil, err
	}
	a.closers = append(a.closers, device)
	logger.Info("Device storage opened", "path", device.Path())
	return a, nil
}

// NewWithDevice собирает хранилище поверх уже открытого хранилища устройства
func NewWithDevice(ctx context.Context, cfg *config.Config, device kv.Store, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Nop()
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		Device: device,
		Local:  repository.NewLocalRepository(device, logger),
		Demo:   mode.NewDemoFlag(device),
		Charts: charts.NewChartGenerator(cfg.CurrencySymbol),
	}

	remote, err := connectRemote(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Remote = remote

	// nil *SupabaseRepository не должен превратиться в ненулевой интерфейс
	var (
		probe    mode.Probe
		backend  repository.Backend
		auth     service.Authenticator
		profiles service.ProfileStore
	)
	if remote != nil {
		a.Profiles = repository.NewProfileRepository(remote, cfg.ProfilesTable)
		probe, backend, auth, profiles = remote, remote, remote, a.Profiles
	}
	a.Resolver = mode.NewResolver(a.Demo, probe)
	a.Store = service.NewTransactionStore(a.Local, backend, a.Resolver, logger)
	a.Account = service.NewAccountService(auth, profiles, a.Demo, device, logger)

	// Сохраненная сессия применяется, если окружение не задает пользователя
	if remote != nil && cfg.SupabaseUserID == "" && cfg.SupabaseEmail == "" {
		if _, err := a.Account.Restore(ctx); err != nil {
			logger.Warn("Saved session could not be restored", "error", err)
		}
	}

	logger.Info("Transaction store ready", "mode", a.Store.Mode(ctx), "remote_configured", remote != nil)
	return a, nil
}

// connectRemote создает адаптер Supabase и устанавливает пользователя.
// Неудачный вход не фатален: адаптер остается недоступным, запросы
// обслуживаются локально.
func connectRemote(ctx context.Context, cfg *config.Config, logger *log.Logger) (*repository.SupabaseRepository, error) {
	if !cfg.RemoteConfigured() {
		logger.Info("Supabase not configured, using device storage only")
		return nil, nil
	}

	remote, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, repository.SupabaseOptions{
		Table:       cfg.TransactionsTable,
		HealthCheck: cfg.RemoteHealthCheck,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case cfg.SupabaseUserID != "":
		if err := remote.SetUserID(cfg.SupabaseUserID); err != nil {
			return nil, err
		}
	case cfg.SupabaseEmail != "":
		if err := remote.SignIn(ctx, cfg.SupabaseEmail, cfg.SupabasePassword); err != nil {
			logger.Warn("Supabase sign-in failed, falling back to device storage", "error", err)
		}
	default:
		logger.Info("Supabase configured without an identity, waiting for sign-in")
	}
	return remote, nil
}

// Close закрывает базу устройства
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
