package model

import "time"

// UserState хранит текущее состояние пользователя в диалоге добавления транзакции
type UserState struct {
	ChatID          int64           `json:"chat_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Category        string          `json:"category"`
	AwaitingAction  string          `json:"awaiting_action"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Шаги диалога в UserState.AwaitingAction
const (
	AwaitingCategory = "category"
	AwaitingEntry    = "entry"
)
