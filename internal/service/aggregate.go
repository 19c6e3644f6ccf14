package service

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ivanoskov/finance_tracker/internal/model"
)

// Palette - фиксированная палитра графиков. Категории сверх ее длины
// получают цвета по кругу.
var Palette = []string{
	"#0a4076", // основной
	"#2eb873", // дополнительный
	"#0da6f2", // акцент
	"#e23636", // опасность
	"#8c3cdd", // фиолетовый
	"#ee8c2b", // оранжевый
	"#22c3c3", // бирюзовый
	"#f4c025", // желтый
}

// ColorFor возвращает цвет палитры для i-й категории после сортировки
func ColorFor(i int) string {
	return Palette[i%len(Palette)]
}

// Totals - суммы доходов и расходов и их разница
type Totals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

// ComputeTotals суммирует по типам. Пустые суммы считаются нулем.
func ComputeTotals(txns []model.Transaction) Totals {
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case model.Income:
			income = income.Add(t.Amount)
		case model.Expense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return Totals{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}
}

// CategoryAggregate - один сектор разбивки расходов
type CategoryAggregate struct {
	Name  string
	Total decimal.Decimal
	Color string
	Share float64 // процент от суммы разбивки
}

// CategoryBreakdown группирует положительные расходы по точному имени категории.
// Группы сортируются по имени до назначения цветов, поэтому цвет категории
// не зависит от порядка входных данных.
func CategoryBreakdown(txns []model.Transaction) []CategoryAggregate {
	index := make(map[string]int)
	groups := make([]CategoryAggregate, 0)

	for _, t := range txns {
		if t.Type != model.Expense || !t.Amount.IsPositive() {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(groups)
			index[t.Category] = i
			groups = append(groups, CategoryAggregate{Name: t.Category, Total: decimal.Zero})
		}
		groups[i].Total = groups[i].Total.Add(t.Amount)
	}

	col := collate.New(language.English)
	slices.SortFunc(groups, func(a, b CategoryAggregate) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	sum := decimal.Zero
	for _, g := range groups {
		sum = sum.Add(g.Total)
	}
	for i := range groups {
		groups[i].Color = ColorFor(i)
		if sum.IsPositive() {
			groups[i].Share = groups[i].Total.Div(sum).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
	}
	return groups
}

// SortByDateDesc возвращает копию, сначала новые. Записи с одной датой
// сохраняют исходный порядок.
func SortByDateDesc(txns []model.Transaction) []model.Transaction {
	sorted := slices.Clone(txns)
	slices.SortStableFunc(sorted, func(a, b model.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return sorted
}
