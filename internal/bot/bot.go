package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/finance_tracker/internal/charts"
	"github.com/ivanoskov/finance_tracker/internal/log"
	"github.com/ivanoskov/finance_tracker/internal/model"
)

// API - часть клиента Telegram, с которой работает бот
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Store - фасад транзакций для всех обработчиков
type Store interface {
	List(ctx context.Context) ([]model.Transaction, error)
	Create(ctx context.Context, candidate model.Candidate) (model.Transaction, error)
	Delete(ctx context.Context, id string) error
	Mode(ctx context.Context) string
}

// DeviceData управляет коллекцией на устройстве напрямую
type DeviceData interface {
	ResetToSampleData(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// DemoSwitch переключает сохраненный флаг демо-режима
type DemoSwitch interface {
	Enabled(ctx context.Context) (bool, error)
	Set(ctx context.Context, enabled bool) error
	Clear(ctx context.Context) error
}

// Account выполняет вход и выход пользователя
type Account interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	Profile(ctx context.Context) (model.Profile, error)
	SaveProfile(ctx context.Context, displayName string) (model.Profile, error)
}

// Deps - сервисы, нужные боту. Account может быть nil, если облачный
// сервис не настроен.
type Deps struct {
	Store          Store
	Device         DeviceData
	Demo           DemoSwitch
	Account        Account
	Charts         *charts.ChartGenerator
	CurrencySymbol string
	Logger         *log.Logger
}

type Bot struct {
	api     API
	store   Store
	device  DeviceData
	demo    DemoSwitch
	account Account
	charts  *charts.ChartGenerator
	symbol  string
	logger  *log.Logger

	mu     sync.Mutex
	states map[int64]*model.UserState // по ID пользователя Telegram
}

// NewBot подключается к Telegram с указанным токеном
func NewBot(token string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return New(api, deps), nil
}

// New создает бота поверх готового клиента
func New(api API, deps Deps) *Bot {
	if deps.Logger == nil {
		deps.Logger = log.Nop()
	}
	if deps.Charts == nil {
		deps.Charts = charts.NewChartGenerator(deps.CurrencySymbol)
	}
	return &Bot{
		api:     api,
		store:   deps.Store,
		device:  deps.Device,
		demo:    deps.Demo,
		account: deps.Account,
		charts:  deps.Charts,
		symbol:  deps.CurrencySymbol,
		logger:  deps.Logger.WithComponent("bot"),
		states:  make(map[int64]*model.UserState),
	}
}

// Start запускает бота в режиме long polling до отмены ctx
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Long polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				b.logger.ErrorContext(ctx, "Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}
	return b.handleUpdate(ctx, update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		return b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	}
	return nil
}

func (b *Bot) state(userID int64) (*model.UserState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.states[userID]
	if !ok {
		return nil, false
	}
	cp := *s
	return &cp, true
}

func (b *Bot) setState(userID int64, s model.UserState) {
	s.UpdatedAt = time.Now()
	b.mu.Lock()
	b.states[userID] = &s
	b.mu.Unlock()
}

func (b *Bot) clearState(userID int64) {
	b.mu.Lock()
	delete(b.states, userID)
	b.mu.Unlock()
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	if _, err := b.api.Send(c); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendErrorMessage(chatID int64, text string) error {
	return b.sendText(chatID, "❌ "+text)
}
