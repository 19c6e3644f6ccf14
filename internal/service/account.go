package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ivanoskov/finance_tracker/internal/kv"
	"github.com/ivanoskov/finance_tracker/internal/log"
	"github.com/ivanoskov/finance_tracker/internal/model"
)

var errRemoteNotConfigured = errors.New("cloud account is not configured")

// Authenticator - удаленный провайдер входа
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context)
	Session() (model.AuthSession, bool)
	RestoreSession(s model.AuthSession) error
}

// ProfileStore хранит профиль вошедшего пользователя
type ProfileStore interface {
	Get(ctx context.Context) (model.Profile, error)
	Upsert(ctx context.Context, displayName string) (model.Profile, error)
}

// DemoClearer выключает демо-режим
type DemoClearer interface {
	Clear(ctx context.Context) error
}

// AccountService обрабатывает вход, регистрацию и выход пользователя.
// Вход и выход всегда выключают демо-режим, и следующий вызов хранилища
// идет уже по новому пользователю.
type AccountService struct {
	auth     Authenticator
	profiles ProfileStore
	demo     DemoClearer
	device   kv.Store
	logger   *log.Logger
}

// NewAccountService создает сервис аккаунта. auth и profiles могут быть nil,
// если удаленный сервис не настроен.
func NewAccountService(auth Authenticator, profiles ProfileStore, demo DemoClearer, device kv.Store, logger *log.Logger) *AccountService {
	if logger == nil {
		logger = log.Nop()
	}
	return &AccountService{
		auth:     auth,
		profiles: profiles,
		demo:     demo,
		device:   device,
		logger:   logger.WithComponent("account"),
	}
}

// SignIn выполняет вход, выключает демо-режим и сохраняет сессию на устройстве
func (s *AccountService) SignIn(ctx context.Context, email, password string) error {
	if s.auth == nil {
		return &model.RemoteError{Op: "sign in", Err: errRemoteNotConfigured}
	}
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	if err := s.auth.SignIn(ctx, strings.TrimSpace(email), password); err != nil {
		return err
	}
	if err := s.demo.Clear(ctx); err != nil {
		return err
	}

	session, ok := s.auth.Session()
	if !ok {
		return nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.device.Set(ctx, kv.SessionKey, data); err != nil {
		return &model.StorageError{Op: "write", Err: err}
	}
	return nil
}

// SignUp создает удаленный аккаунт
func (s *AccountService) SignUp(ctx context.Context, email, password string) error {
	if s.auth == nil {
		return &model.RemoteError{Op: "sign up", Err: errRemoteNotConfigured}
	}
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	return s.auth.SignUp(ctx, strings.TrimSpace(email), password)
}

// SignOut сбрасывает флаг демо, удаляет сохраненную сессию и завершает
// удаленную. Работает и без удаленного сервиса.
func (s *AccountService) SignOut(ctx context.Context) error {
	if err := s.demo.Clear(ctx); err != nil {
		return err
	}
	if err := s.device.Delete(ctx, kv.SessionKey); err != nil {
		return &model.StorageError{Op: "delete", Err: err}
	}
	if s.auth != nil {
		s.auth.SignOut(ctx)
	}
	s.logger.InfoContext(ctx, "Signed out")
	return nil
}

// Restore устанавливает сессию, сохраненную прошлым SignIn, и сообщает,
// нашлась ли она.
func (s *AccountService) Restore(ctx context.Context) (bool, error) {
	if s.auth == nil {
		return false, nil
	}
	data, ok, err := s.device.Get(ctx, kv.SessionKey)
	if err != nil {
		return false, &model.StorageError{Op: "read", Err: err}
	}
	if !ok {
		return false, nil
	}

	var session model.AuthSession
	if err := json.Unmarshal(data, &session); err != nil {
		return false, &model.StorageError{Op: "decode", Err: err}
	}
	if err := s.auth.RestoreSession(session); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "Session restored", "user_id", session.UserID)
	return true, nil
}

// Profile загружает профиль вошедшего пользователя
func (s *AccountService) Profile(ctx context.Context) (model.Profile, error) {
	if s.profiles == nil {
		return model.Profile{}, &model.RemoteError{Op: "load profile", Err: errRemoteNotConfigured}
	}
	return s.profiles.Get(ctx)
}

// SaveProfile обновляет отображаемое имя
func (s *AccountService) SaveProfile(ctx context.Context, displayName string) (model.Profile, error) {
	if s.profiles == nil {
		return model.Profile{}, &model.RemoteError{Op: "save profile", Err: errRemoteNotConfigured}
	}
	return s.profiles.Upsert(ctx, displayName)
}

func validateCredentials(email, password string) error {
	if !strings.Contains(strings.TrimSpace(email), "@") {
		return &model.ValidationError{Field: "email", Reason: "must be an email address"}
	}
	if password == "" {
		return &model.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return nil
}
