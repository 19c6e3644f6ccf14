package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemoUserID - владелец коллекции на устройстве
const DemoUserID = "demo-user-local"

// SampleTransactions возвращает фиксированный набор демо-данных для нового
// локального пространства. Каждый вызов создает новый срез.
func SampleTransactions() []Transaction {
	return []Transaction{
		sample("1", 45000, "Monthly Salary", "Salary", Income, 1),
		sample("2", 15000, "Freelance Project", "Freelance", Income, 15),
		sample("3", 12000, "Apartment Rent", "Housing", Expense, 5),
		sample("4", 3500, "Groceries", "Food", Expense, 10),
		sample("5", 2000, "Electricity Bill", "Utilities", Expense, 12),
		sample("6", 1500, "Movie Night", "Entertainment", Expense, 18),
		sample("7", 5000, "Investment Returns", "Investments", Income, 20),
		sample("8", 800, "Coffee & Snacks", "Food", Expense, 22),
		sample("9", 4500, "New Laptop Accessories", "Shopping", Expense, 25),
		sample("10", 1200, "Metro Card Recharge", "Transportation", Expense, 28),
	}
}

func sample(id string, amount int64, description, category string, t TransactionType, day int) Transaction {
	return Transaction{
		ID:          id,
		Amount:      decimal.NewFromInt(amount),
		Description: description,
		Category:    category,
		Type:        t,
		Date:        NewDate(2025, time.November, day),
	}
}
