package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType - доход или расход
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid сообщает, является ли тип одним из двух известных
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType принимает "income"/"expense" в любом регистре
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", s)}
	}
	return t, nil
}

// Transaction - одна запись дохода или расхода.
// Amount всегда положительна, знак определяется Type.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`
	Date        Date            `json:"date"`
}

// Candidate возвращает запись без id
func (t Transaction) Candidate() Candidate {
	return Candidate{
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Type:        t.Type,
		Date:        t.Date,
	}
}

// Candidate - транзакция, еще не сохраненная
type Candidate struct {
	Amount      decimal.Decimal
	Description string
	Category    string
	Type        TransactionType
	Date        Date
}

// Validate проверяет кандидата до передачи в бэкенд
func (c Candidate) Validate() error {
	if !c.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(c.Description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.Category) == "" {
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if !c.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", c.Type)}
	}
	if c.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "must be set"}
	}
	return nil
}

// WithID превращает кандидата в сохраненную запись
func (c Candidate) WithID(id string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      c.Amount,
		Description: c.Description,
		Category:    c.Category,
		Type:        c.Type,
		Date:        c.Date,
	}
}

// ParseCandidate собирает проверенного кандидата из введенного текста.
// Пустая дата означает сегодня.
func ParseCandidate(amount, description, category, typ, date string) (Candidate, error) {
	a, err := ParseAmount(amount)
	if err != nil {
		return Candidate{}, err
	}
	t, err := ParseTransactionType(typ)
	if err != nil {
		return Candidate{}, err
	}
	d := Today()
	if strings.TrimSpace(date) != "" {
		if d, err = ParseDate(date); err != nil {
			return Candidate{}, err
		}
	}

	c := Candidate{
		Amount:      a,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Type:        t,
		Date:        d,
	}
	if err := c.Validate(); err != nil {
		return Candidate{}, err
	}
	return c, nil
}

// ParseAmount разбирает десятичную сумму, отклоняя NaN/Inf и мусор.
// Одна запятая с одной-двумя цифрами после нее - десятичный разделитель (12,50);
// иначе запятые должны разделять тысячи (45,000 или 1,000.50).
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	normalized, ok := normalizeSeparators(s)
	if !ok {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a valid number", s)}
	}
	a, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a finite number", s)}
	}
	return a, nil
}

func normalizeSeparators(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}

	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	intPart, frac, hasDot := strings.Cut(s, ".")

	if !hasDot && strings.Count(s, ",") == 1 {
		whole, dec, _ := strings.Cut(s, ",")
		if len(dec) == 1 || len(dec) == 2 {
			return sign + whole + "." + dec, true
		}
	}

	groups := strings.Split(intPart, ",")
	if len(groups[0]) < 1 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	out := sign + strings.Join(groups, "")
	if hasDot {
		out += "." + frac
	}
	return out, true
}

// Patch хранит поля частичного обновления. Поля nil не меняются.
type Patch struct {
	Amount      *decimal.Decimal
	Description *string
	Category    *string
	Type        *TransactionType
	Date        *Date
}

// Apply применяет patch к t. id никогда не меняется.
func (p Patch) Apply(t Transaction) Transaction {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

const dateLayout = "2006-01-02"

// Date - календарная дата без времени
type Date struct {
	time.Time
}

// NewDate возвращает дату на полночь UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today возвращает текущую локальную дату
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate принимает YYYY-MM-DD и метки времени RFC 3339
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	return Date{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON считает null и "" нулевой датой
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
