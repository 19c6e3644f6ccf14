package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/finance_tracker/internal/log"
	"github.com/ivanoskov/finance_tracker/internal/model"
)

var errNotAuthenticated = errors.New("not signed in")

// SupabaseRepository хранит транзакции в таблице Supabase с привязкой
// к user_id. Каждый запрос фильтрует по владельцу.
type SupabaseRepository struct {
	client      *supabase.Client
	key         string
	table       string
	healthCheck bool
	logger      *log.Logger

	mu      sync.RWMutex
	userID  string
	session *model.AuthSession // только для входа по паролю
}

// SupabaseOptions настраивает удаленный репозиторий
type SupabaseOptions struct {
	Table string
	// HealthCheck заставляет Available делать настоящий запрос, а не только
	// проверять вход пользователя.
	HealthCheck bool
	Logger      *log.Logger
}

// remoteRow - данные для вставки; id назначает таблица
type remoteRow struct {
	UserID      string                `json:"user_id"`
	Amount      decimal.Decimal       `json:"amount"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Type        model.TransactionType `json:"type"`
	Date        model.Date            `json:"date"`
}

func NewSupabaseRepository(url, key string, opts SupabaseOptions) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}

	if opts.Table == "" {
		opts.Table = "transactions"
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}

	return &SupabaseRepository{
		client:      client,
		key:         key,
		table:       opts.Table,
		healthCheck: opts.HealthCheck,
		logger:      opts.Logger.WithComponent("supabase"),
	}, nil
}

func (r *SupabaseRepository) Name() string {
	return RemoteBackendName
}

// SignIn выполняет вход по email и паролю, пользователь сессии
// становится владельцем всех следующих запросов.
func (r *SupabaseRepository) SignIn(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	token, err := r.client.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return &model.RemoteError{Op: "sign in", Err: err}
	}
	r.client.UpdateAuthSession(token.Session)

	r.mu.Lock()
	r.userID = token.User.ID.String()
	r.session = &model.AuthSession{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		UserID:       r.userID,
	}
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Signed in", "user_id", token.User.ID.String())
	return nil
}

// SignUp регистрирует новый аккаунт. Войти нужно отдельно.
func (r *SupabaseRepository) SignUp(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.client.Auth.Signup(types.SignupRequest{Email: email, Password: password}); err != nil {
		return &model.RemoteError{Op: "sign up", Err: err}
	}
	r.logger.InfoContext(ctx, "Account created", "email", email)
	return nil
}

// Session возвращает текущую сессию входа по паролю, если есть
func (r *SupabaseRepository) Session() (model.AuthSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session == nil {
		return model.AuthSession{}, false
	}
	return *r.session, true
}

// RestoreSession устанавливает сессию, сохраненную при прошлом входе
func (r *SupabaseRepository) RestoreSession(s model.AuthSession) error {
	parsed, err := uuid.Parse(s.UserID)
	if err != nil {
		return fmt.Errorf("invalid session user id %q: %w", s.UserID, err)
	}
	if s.AccessToken == "" {
		return errors.New("session has no access token")
	}
	r.client.UpdateAuthSession(types.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "bearer",
	})

	r.mu.Lock()
	r.userID = parsed.String()
	r.session = &s
	r.session.UserID = r.userID
	r.mu.Unlock()
	return nil
}

// SetUserID задает владельца напрямую, например с ключом service-role
func (r *SupabaseRepository) SetUserID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", id, err)
	}
	r.mu.Lock()
	r.userID = parsed.String()
	r.mu.Unlock()
	return nil
}

// SignOut завершает сессию на сервере и забывает пользователя;
// репозиторий становится недоступным. Ошибка выхода на сервере
// только логируется.
func (r *SupabaseRepository) SignOut(ctx context.Context) {
	r.mu.Lock()
	session := r.session
	r.userID = ""
	r.session = nil
	r.mu.Unlock()

	if session == nil {
		return
	}
	if err := r.client.Auth.Logout(); err != nil {
		r.logger.WarnContext(ctx, "Server logout failed", "error", err)
	}
	r.client.UpdateAuthSession(types.Session{AccessToken: r.key, TokenType: "bearer"})
	r.logger.InfoContext(ctx, "Signed out", "user_id", session.UserID)
}

// UserID возвращает текущего владельца, пусто после выхода
func (r *SupabaseRepository) UserID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userID
}

// Available сообщает, может ли удаленный сервис обслуживать запросы
func (r *SupabaseRepository) Available(ctx context.Context) bool {
	if r.UserID() == "" {
		return false
	}
	if !r.healthCheck {
		return true
	}
	if err := r.Ping(ctx); err != nil {
		r.logger.WarnContext(ctx, "Remote health check failed", "error", err)
		return false
	}
	return true
}

// Ping делает самый дешевый запрос к таблице
func (r *SupabaseRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := r.client.From(r.table).
		Select("id", "", false).
		Limit(1, "").
		Execute()
	if err != nil {
		return &model.RemoteError{Op: "ping", Err: err}
	}
	return nil
}

// List возвращает транзакции владельца, сначала новые
func (r *SupabaseRepository) List(ctx context.Context) ([]model.Transaction, error) {
	userID, err := r.owner(ctx)
	if err != nil {
		return []model.Transaction{}, err
	}

	data, count, err := r.client.From(r.table).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("date", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		r.logger.ErrorContext(ctx, "Supabase query failed", "error", err)
		return []model.Transaction{}, &model.RemoteError{Op: "list", Err: err}
	}

	txns := []model.Transaction{}
	if err := json.Unmarshal(data, &txns); err != nil {
		return []model.Transaction{}, &model.RemoteError{Op: "list", Err: fmt.Errorf("parse transactions: %w", err)}
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	r.logger.DebugContext(ctx, "Listed remote transactions", "rows", len(txns), "count", count)
	return txns, nil
}

// Create вставляет кандидата для текущего владельца и возвращает строку
// в сохраненном виде, с id от таблицы.
func (r *SupabaseRepository) Create(ctx context.Context, candidate model.Candidate) (model.Transaction, error) {
	if err := candidate.Validate(); err != nil {
		return model.Transaction{}, err
	}
	userID, err := r.owner(ctx)
	if err != nil {
		return model.Transaction{}, err
	}

	row := remoteRow{
		UserID:      userID,
		Amount:      candidate.Amount,
		Description: candidate.Description,
		Category:    candidate.Category,
		Type:        candidate.Type,
		Date:        candidate.Date,
	}
	data, _, err := r.client.From(r.table).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating transaction", "error", err)
		return model.Transaction{}, &model.RemoteError{Op: "insert", Err: err}
	}

	var created []model.Transaction
	if err := json.Unmarshal(data, &created); err != nil {
		return model.Transaction{}, &model.RemoteError{Op: "insert", Err: fmt.Errorf("parse created transaction: %w", err)}
	}
	if len(created) == 0 || created[0].ID == "" {
		return model.Transaction{}, &model.RemoteError{Op: "insert", Err: errors.New("no row returned")}
	}

	r.logger.InfoContext(ctx, "Transaction created", "id", created[0].ID, "type", created[0].Type)
	return created[0], nil
}

// Delete удаляет строку, только если она принадлежит текущему владельцу
func (r *SupabaseRepository) Delete(ctx context.Context, id string) error {
	userID, err := r.owner(ctx)
	if err != nil {
		return err
	}

	_, _, err = r.client.From(r.table).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return &model.RemoteError{Op: "delete", Err: err}
	}
	r.logger.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (r *SupabaseRepository) owner(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userID := r.UserID()
	if userID == "" {
		return "", &model.RemoteError{Op: "auth", Err: errNotAuthenticated}
	}
	return userID, nil
}
