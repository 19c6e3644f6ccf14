package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ivanoskov/finance_tracker/internal/model"
	"github.com/ivanoskov/finance_tracker/internal/repository"
	"github.com/ivanoskov/finance_tracker/internal/service"
)

const listLimit = 20

type entry struct {
	amount      string
	description string
	date        string
}

// parseEntry разбирает "сумма описание [YYYY-MM-DD]". Последнее поле
// считается датой, только если разбирается как дата.
func parseEntry(text string) (entry, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return entry{}, errors.New("expected: <amount> <description> [YYYY-MM-DD]")
	}

	e := entry{amount: fields[0]}
	rest := fields[1:]
	if len(rest) > 1 {
		if _, err := model.ParseDate(rest[len(rest)-1]); err == nil {
			e.date = rest[len(rest)-1]
			rest = rest[:len(rest)-1]
		}
	}
	e.description = strings.Join(rest, " ")
	return e, nil
}

func formatTransaction(symbol string, t model.Transaction) string {
	emoji := "💸"
	if t.Type == model.Income {
		emoji = "💰"
	}
	return fmt.Sprintf("%s %s %s %s (%s)",
		emoji,
		t.Date.String(),
		service.SignedAmount(symbol, t.Amount, t.Type == model.Income),
		t.Description,
		t.Category,
	)
}

func formatTransactionList(symbol string, txns []model.Transaction, limit int) string {
	if len(txns) == 0 {
		return "No transactions yet. Add one with the buttons below."
	}

	var sb strings.Builder
	sb.WriteString("📋 Transactions\n\n")
	for i, t := range txns {
		if i == limit {
			fmt.Fprintf(&sb, "\n… and %d more", len(txns)-limit)
			break
		}
		sb.WriteString(formatTransaction(symbol, t))
		fmt.Fprintf(&sb, "\n   id: %s\n", t.ID)
	}
	return sb.String()
}

func formatReport(symbol string, r service.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Report\n\n💰 Income: %s\n💸 Expenses: %s\n💵 Balance: %s\n",
		service.FormatAmount(symbol, r.Totals.Income),
		service.FormatAmount(symbol, r.Totals.Expenses),
		service.FormatAmount(symbol, r.Totals.Balance),
	)
	fmt.Fprintf(&sb, "\nTransactions: %d income, %d expense\n", r.IncomeCount, r.ExpenseCount)

	if len(r.Breakdown) == 0 {
		sb.WriteString("\nNo expenses to break down.")
		return sb.String()
	}
	sb.WriteString("\nSpending by category:\n")
	for _, c := range r.Breakdown {
		fmt.Fprintf(&sb, "• %s: %s (%.1f%%)\n", c.Name, service.FormatAmount(symbol, c.Total), c.Share)
	}
	if r.MaxExpense != nil {
		fmt.Fprintf(&sb, "\nLargest expense: %s %s", r.MaxExpense.Description, service.FormatAmount(symbol, r.MaxExpense.Amount))
	}
	return sb.String()
}

func formatMode(backend string, demo bool) string {
	switch {
	case demo:
		return "Mode: demo. Data is stored on this device."
	case backend == repository.RemoteBackendName:
		return "Mode: cloud. Data is stored in your Supabase account."
	default:
		return "Mode: local. The cloud service is unavailable, data is stored on this device."
	}
}
