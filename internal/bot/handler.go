package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/finance_tracker/internal/model"
	"github.com/ivanoskov/finance_tracker/internal/service"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start", "help":
		return b.handleStart(chatID)
	case "list":
		return b.handleList(ctx, chatID)
	case "add":
		return b.handleAdd(ctx, message, args)
	case "income":
		return b.startAdd(message.From.ID, chatID, model.Income)
	case "expense":
		return b.startAdd(message.From.ID, chatID, model.Expense)
	case "delete":
		return b.handleDelete(ctx, chatID, args)
	case "report":
		return b.handleReport(ctx, chatID)
	case "demo":
		return b.handleDemo(ctx, chatID, args)
	case "reset":
		return b.handleReset(ctx, chatID)
	case "clear":
		return b.handleClear(ctx, chatID)
	case "mode":
		return b.handleMode(ctx, chatID)
	case "signin":
		return b.handleSignIn(ctx, message, args)
	case "signup":
		return b.handleSignUp(ctx, message, args)
	case "signout":
		return b.handleSignOut(ctx, chatID)
	case "profile":
		return b.handleProfile(ctx, chatID, args)
	case "cancel":
		b.clearState(message.From.ID)
		return b.sendMenu(chatID, "Cancelled.")
	}
	return b.sendText(chatID, "Unknown command. Send /help for the list of commands.")
}

func (b *Bot) handleStart(chatID int64) error {
	return b.sendMenu(chatID,
		"Welcome to Finance Tracker! 💰\n\n"+
			"Track your income and expenses:\n\n"+
			"/list - recent transactions\n"+
			"/add <income|expense> <category> <amount> <description> [YYYY-MM-DD]\n"+
			"/delete <id> - remove a transaction\n"+
			"/report - totals and spending by category\n"+
			"/demo on|off - use sample data stored on this device\n"+
			"/reset - restore the sample data\n"+
			"/clear - delete all data on this device\n"+
			"/mode - show where data is stored\n"+
			"/signin <email> <password> - use your cloud account\n"+
			"/signup <email> <password> - create a cloud account\n"+
			"/signout - leave the cloud account and demo mode\n"+
			"/profile [name] - show or set your display name\n\n"+
			"Choose an action:")
}

func (b *Bot) sendMenu(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.getMainKeyboard()
	return b.send(msg)
}

func (b *Bot) handleList(ctx context.Context, chatID int64) error {
	txns, err := b.store.List(ctx)
	if err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	recent := service.SortByDateDesc(txns)

	msg := tgbotapi.NewMessage(chatID, formatTransactionList(b.symbol, recent, listLimit))
	if kb, ok := b.getDeleteKeyboard(recent); ok {
		msg.ReplyMarkup = kb
	}
	return b.send(msg)
}

func (b *Bot) startAdd(userID, chatID int64, t model.TransactionType) error {
	b.setState(userID, model.UserState{
		ChatID:          chatID,
		TransactionType: t,
		AwaitingAction:  model.AwaitingCategory,
	})

	label := "expense"
	if t == model.Income {
		label = "income"
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Choose the %s category:", label))
	msg.ReplyMarkup = b.getCategoriesKeyboard(t)
	return b.send(msg)
}

// handleAdd создает транзакцию одной строкой:
// /add expense Food 500 Lunch 2025-01-10
func (b *Bot) handleAdd(ctx context.Context, message *tgbotapi.Message, args string) error {
	chatID := message.Chat.ID
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return b.startAdd(message.From.ID, chatID, model.Expense)
	}
	if len(fields) < 4 {
		return b.sendErrorMessage(chatID, "Usage: /add <income|expense> <category> <amount> <description> [YYYY-MM-DD]")
	}

	entry, err := parseEntry(strings.Join(fields[2:], " "))
	if err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	candidate, err := model.ParseCandidate(entry.amount, entry.description, fields[1], fields[0], entry.date)
	if err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	return b.create(ctx, chatID, candidate)
}

func (b *Bot) create(ctx context.Context, chatID int64, candidate model.Candidate) error {
	created, err := b.store.Create(ctx, candidate)
	if err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	if err := b.sendMenu(chatID, "Saved ✅\n"+formatTransaction(b.symbol, created)); err != nil {
		return err
	}
	return b.handleList(ctx, chatID)
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, id string) error {
	if id == "" {
		return b.sendErrorMessage(chatID, "Usage: /delete <id>")
	}
	if err := b.store.Delete(ctx, id); err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	if err := b.sendText(chatID, "Deleted 🗑"); err != nil {
		return err
	}
	return b.handleList(ctx, chatID)
}

func (b *Bot) handleReport(ctx context.Context, chatID int64) error {
	txns, err := b.store.List(ctx)
	if err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	report := service.BuildReport(txns)
	if err := b.sendText(chatID, formatReport(b.symbol, report)); err != nil {
		return err
	}
	if report.Empty() {
		return nil
	}

	images, err := b.charts.RenderReport(ctx, report)
	if err != nil {
		b.logger.ErrorContext(ctx, "Chart rendering failed", "error", err)
		return b.sendErrorMessage(chatID, "Could not draw the charts")
	}
	for _, img := range []struct {
		name string
		data []byte
	}{
		{"categories.png", images.Categories},
		{"totals.png", images.Totals},
		{"balance.png", images.Balance},
	} {
		if img.data == nil {
			continue
		}
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: img.name, Bytes: img.data})
		if err := b.send(photo); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleDemo(ctx context.Context, chatID int64, arg string) error {
	var err error
	switch strings.ToLower(arg) {
	case "on":
		err = b.demo.Set(ctx, true)
	case "off":
		err = b.demo.Clear(ctx)
	case "":
		return b.handleMode(ctx, chatID)
	default:
		return b.sendErrorMessage(chatID, "Usage: /demo on|off")
	}
	if err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	return b.handleMode(ctx, chatID)
}

func (b *Bot) handleReset(ctx context.Context, chatID int64) error {
	if err := b.device.ResetToSampleData(ctx); err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	return b.sendText(chatID, "Device data restored to the sample transactions.")
}

func (b *Bot) handleClear(ctx context.Context, chatID int64) error {
	if err := b.device.ClearAll(ctx); err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	return b.sendText(chatID, "Device data cleared.")
}

func (b *Bot) handleMode(ctx context.Context, chatID int64) error {
	demo, err := b.demo.Enabled(ctx)
	if err != nil {
		b.logger.WarnContext(ctx, "Demo flag unreadable", "error", err)
	}
	return b.sendText(chatID, formatMode(b.store.Mode(ctx), demo))
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// Отвечаем на callback, чтобы убрать loading indicator
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.WarnContext(ctx, "Callback answer failed", "error", err)
	}
	if callback.Message == nil || callback.From == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	switch data := callback.Data; {
	case data == actionAddIncome:
		return b.startAdd(userID, chatID, model.Income)
	case data == actionAddExpense:
		return b.startAdd(userID, chatID, model.Expense)
	case data == actionList:
		return b.handleList(ctx, chatID)
	case data == actionReport:
		return b.handleReport(ctx, chatID)
	case data == actionBack:
		b.clearState(userID)
		return b.sendMenu(chatID, "Choose an action:")
	case strings.HasPrefix(data, callbackDelete):
		return b.handleDelete(ctx, chatID, strings.TrimPrefix(data, callbackDelete))
	case strings.HasPrefix(data, callbackCategory):
		state, ok := b.state(userID)
		if !ok {
			return b.sendMenu(chatID, "Choose an action:")
		}
		state.Category = strings.TrimPrefix(data, callbackCategory)
		state.AwaitingAction = model.AwaitingEntry
		b.setState(userID, *state)
		return b.sendText(chatID, fmt.Sprintf(
			"Category: %s\nSend the amount and description, optionally a date:\n500 Lunch with friends 2025-01-10",
			state.Category))
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	switch message.Text {
	case buttonAddIncome:
		return b.startAdd(message.From.ID, chatID, model.Income)
	case buttonAddExpense:
		return b.startAdd(message.From.ID, chatID, model.Expense)
	case buttonList:
		return b.handleList(ctx, chatID)
	case buttonReport:
		return b.handleReport(ctx, chatID)
	}

	state, ok := b.state(message.From.ID)
	if !ok || state.AwaitingAction != model.AwaitingEntry {
		return b.sendMenu(chatID, "Choose an action:")
	}

	entry, err := parseEntry(message.Text)
	if err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	candidate, err := model.ParseCandidate(entry.amount, entry.description, state.Category, string(state.TransactionType), entry.date)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return b.sendErrorMessage(chatID, fmt.Sprintf("%s. Try again or send /cancel", verr.Error()))
		}
		return b.sendErrorMessage(chatID, err.Error())
	}

	b.clearState(message.From.ID)
	return b.create(ctx, chatID, candidate)
}
