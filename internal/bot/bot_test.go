package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/finance_tracker/internal/kv"
	"github.com/ivanoskov/finance_tracker/internal/mode"
	"github.com/ivanoskov/finance_tracker/internal/model"
	"github.com/ivanoskov/finance_tracker/internal/repository"
	"github.com/ivanoskov/finance_tracker/internal/service"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests int
	deleted  []int // ID сообщений
	updates  chan tgbotapi.Update
	stopped  bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if d, ok := c.(tgbotapi.DeleteMessageConfig); ok {
		f.deleted = append(f.deleted, d.MessageID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return m
		}
	}
	return tgbotapi.MessageConfig{}
}

func (f *fakeAPI) photos() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.sent {
		if _, ok := c.(tgbotapi.PhotoConfig); ok {
			n++
		}
	}
	return n
}

type fixture struct {
	bot   *Bot
	api   *fakeAPI
	store *service.TransactionStore
	demo  *mode.DemoFlag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	device := kv.NewMemory()
	local := repository.NewLocalRepository(device, nil)
	demo := mode.NewDemoFlag(device)
	store := service.NewTransactionStore(local, nil, mode.NewResolver(demo, nil), nil)
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}

	b := New(api, Deps{Store: store, Device: local, Demo: demo, CurrencySymbol: "₹"})
	return &fixture{bot: b, api: api, store: store, demo: demo}
}

const userID = 42

func command(text string) tgbotapi.Update {
	name, _, _ := strings.Cut(text, " ")
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: userID},
		From:     &tgbotapi.User{ID: userID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func text(s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: s,
		Chat: &tgbotapi.Chat{ID: userID},
		From: &tgbotapi.User{ID: userID},
	}}
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID}},
	}}
}

func (f *fixture) handle(t *testing.T, u tgbotapi.Update) {
	t.Helper()
	require.NoError(t, f.bot.handleUpdate(context.Background(), u))
}

func TestBot_ListShowsSampleDataWithDeleteButtons(t *testing.T) {
	f := newFixture(t)
	f.handle(t, command("/list"))

	msg := f.api.last()
	assert.True(t, strings.HasPrefix(msg.Text, "📋 Transactions"))
	assert.Less(t, strings.Index(msg.Text, "Metro Card Recharge"), strings.Index(msg.Text, "Monthly Salary"), "newest first")
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.InlineKeyboard, 10)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "delete_10", *kb.InlineKeyboard[0][0].CallbackData)
}

func TestBot_AddFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.handle(t, callback(actionAddExpense))
	kb, ok := f.api.last().ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "Housing", kb.InlineKeyboard[0][0].Text)

	f.handle(t, callback("category_Food"))
	assert.Contains(t, f.api.last().Text, "Category: Food")

	f.handle(t, text("oops"))
	assert.Contains(t, f.api.last().Text, "❌")

	f.handle(t, text("-5 Lunch"))
	assert.Contains(t, f.api.last().Text, "invalid amount")

	f.handle(t, text("500 Lunch with friends 2025-01-10"))
	assert.Contains(t, f.api.texts()[len(f.api.texts())-2], "Saved ✅")
	assert.True(t, strings.HasPrefix(f.api.last().Text, "📋 Transactions"), "list follows a mutation")

	txns, err := f.store.List(ctx)
	require.NoError(t, err)
	got := txns[len(txns)-1]
	assert.Equal(t, "Lunch with friends", got.Description)
	assert.Equal(t, "Food", got.Category)
	assert.Equal(t, model.Expense, got.Type)
	assert.Equal(t, "500", got.Amount.String())
	assert.Equal(t, "2025-01-10", got.Date.String())

	_, awaiting := f.bot.state(userID)
	assert.False(t, awaiting)
}

func TestBot_AddCommandOneLine(t *testing.T) {
	f := newFixture(t)
	f.handle(t, command("/add income Salary 1000.50 Bonus"))

	txns, err := f.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 11)
	assert.Equal(t, "Bonus", txns[10].Description)
	assert.Equal(t, model.Income, txns[10].Type)

	f.handle(t, command("/add transfer Salary 10 Bonus"))
	assert.Contains(t, f.api.last().Text, "unknown transaction type")
}

func TestBot_DeleteCallback(t *testing.T) {
	f := newFixture(t)
	f.handle(t, callback("delete_3"))

	txns, err := f.store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, txns, 9)
	for _, tx := range txns {
		assert.NotEqual(t, "3", tx.ID)
	}
	assert.Equal(t, 1, f.api.requests, "callback answered")

	f.handle(t, command("/delete"))
	assert.Contains(t, f.api.last().Text, "Usage: /delete")
}

func TestBot_Report(t *testing.T) {
	f := newFixture(t)
	f.handle(t, command("/report"))

	texts := f.api.texts()
	require.NotEmpty(t, texts)
	assert.Contains(t, texts[0], "Income: ₹65,000")
	assert.Contains(t, texts[0], "Balance: ₹39,500")
	assert.Contains(t, texts[0], "• Entertainment: ₹1,500")
	assert.Equal(t, 3, f.api.photos())
}

func TestBot_ReportEmptyCollection(t *testing.T) {
	f := newFixture(t)
	for _, tx := range model.SampleTransactions() {
		require.NoError(t, f.store.Delete(context.Background(), tx.ID))
	}
	f.handle(t, command("/report"))

	assert.Contains(t, f.api.last().Text, "No expenses to break down")
	assert.Zero(t, f.api.photos())
}

func TestBot_DemoAndMode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.handle(t, command("/demo on"))
	assert.Contains(t, f.api.last().Text, "Mode: demo")
	enabled, err := f.demo.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	f.handle(t, command("/demo off"))
	assert.Contains(t, f.api.last().Text, "Mode: local")

	f.handle(t, command("/demo maybe"))
	assert.Contains(t, f.api.last().Text, "Usage: /demo")
}

func TestBot_ResetAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.handle(t, command("/add expense Food 10 Snack"))

	f.handle(t, command("/reset"))
	assert.Contains(t, f.api.last().Text, "restored")
	txns, err := f.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 10)

	f.handle(t, command("/add expense Food 10 Snack"))
	f.handle(t, command("/clear"))
	assert.Equal(t, "Device data cleared.", f.api.last().Text)
	txns, err = f.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 10, "a cleared namespace is seeded again on the next read")
}

func TestBot_HandleWebhook(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.bot.HandleWebhook(context.Background(), []byte("{")))

	body := `{"update_id":1,"message":{"message_id":1,"text":"/mode","chat":{"id":42},"from":{"id":42},"entities":[{"type":"bot_command","offset":0,"length":5}]}}`
	require.NoError(t, f.bot.HandleWebhook(context.Background(), []byte(body)))
	assert.Contains(t, f.api.last().Text, "Mode: local")
}

func TestBot_StartStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.bot.Start(ctx) }()

	f.api.updates <- command("/mode")
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.True(t, f.api.stopped)
	assert.Contains(t, f.api.last().Text, "Mode: local")
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		in      string
		want    entry
		wantErr bool
	}{
		{in: "500 Lunch", want: entry{amount: "500", description: "Lunch"}},
		{in: "12,5 Coffee and cake 2025-01-10", want: entry{amount: "12,5", description: "Coffee and cake", date: "2025-01-10"}},
		{in: "100 2025-01-10", want: entry{amount: "100", description: "2025-01-10"}},
		{in: "100   Taxi  home ", want: entry{amount: "100", description: "Taxi home"}},
		{in: "100", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseEntry(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatTransactionList_Limit(t *testing.T) {
	out := formatTransactionList("$", model.SampleTransactions(), 3)
	assert.Contains(t, out, "… and 7 more")
	assert.Contains(t, out, "+$45,000 Monthly Salary (Salary)")
	assert.Equal(t, "No transactions yet. Add one with the buttons below.", formatTransactionList("$", nil, 3))
}
