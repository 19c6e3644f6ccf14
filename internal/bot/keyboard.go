package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/finance_tracker/internal/model"
)

// Подписи кнопок клавиатуры, по ним же распознаем нажатия
const (
	buttonAddIncome  = "💰 Add income"
	buttonAddExpense = "💸 Add expense"
	buttonList       = "📋 Transactions"
	buttonReport     = "📊 Report"
)

// Префиксы и действия callback-данных
const (
	callbackCategory   = "category_"
	callbackDelete     = "delete_"
	actionAddIncome    = "action_add_income"
	actionAddExpense   = "action_add_expense"
	actionList         = "action_list"
	actionReport       = "action_report"
	actionBack         = "action_back"
	maxDeleteButtons   = 10
	maxCallbackPayload = 64
)

func (b *Bot) getMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonAddIncome),
			tgbotapi.NewKeyboardButton(buttonAddExpense),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonList),
			tgbotapi.NewKeyboardButton(buttonReport),
		),
	)
}

func (b *Bot) getCategoriesKeyboard(t model.TransactionType) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	categories := model.CategoriesFor(t)

	for i := 0; i < len(categories); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(categories[i], callbackCategory+categories[i]),
		}
		if i+1 < len(categories) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(categories[i+1], callbackCategory+categories[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", actionBack),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// getDeleteKeyboard добавляет кнопку удаления для каждой транзакции списка.
// Слишком длинные ID пропускаются, для них работает /delete.
func (b *Bot) getDeleteKeyboard(txns []model.Transaction) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range txns {
		if len(rows) == maxDeleteButtons {
			break
		}
		data := callbackDelete + t.ID
		if len(data) > maxCallbackPayload {
			continue
		}
		label := "🗑 " + truncate(t.Description, 24) + " " + t.Date.String()
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
