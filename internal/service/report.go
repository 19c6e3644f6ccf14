package service

import (
	"github.com/ivanoskov/finance_tracker/internal/model"
)

// Report - все, что показывает сводка, по одной коллекции
type Report struct {
	Totals       Totals
	Breakdown    []CategoryAggregate
	Recent       []model.Transaction // сначала новые
	IncomeCount  int
	ExpenseCount int
	MaxIncome    *model.Transaction
	MaxExpense   *model.Transaction
}

// BuildReport пересчитывает все производные данные. Побочных эффектов нет,
// вызывается заново при каждом изменении коллекции.
func BuildReport(txns []model.Transaction) Report {
	report := Report{
		Totals:    ComputeTotals(txns),
		Breakdown: CategoryBreakdown(txns),
		Recent:    SortByDateDesc(txns),
	}

	for i := range report.Recent {
		t := &report.Recent[i]
		switch t.Type {
		case model.Income:
			report.IncomeCount++
			if report.MaxIncome == nil || t.Amount.GreaterThan(report.MaxIncome.Amount) {
				report.MaxIncome = t
			}
		case model.Expense:
			report.ExpenseCount++
			if report.MaxExpense == nil || t.Amount.GreaterThan(report.MaxExpense.Amount) {
				report.MaxExpense = t
			}
		}
	}
	return report
}

// Empty сообщает, что показывать нечего
func (r Report) Empty() bool {
	return len(r.Recent) == 0
}
