package model

// Категории, предлагаемые при вводе. Хранилище принимает любую
// непустую метку, список нужен только для клавиатур и подсказок.
var (
	IncomeCategories  = []string{"Salary", "Freelance", "Investments", "Other Income"}
	ExpenseCategories = []string{"Housing", "Food", "Transportation", "Entertainment", "Utilities", "Healthcare", "Shopping", "Other"}
)

// CategoriesFor возвращает предлагаемые категории для типа
func CategoriesFor(t TransactionType) []string {
	switch t {
	case Income:
		return IncomeCategories
	case Expense:
		return ExpenseCategories
	default:
		return nil
	}
}
