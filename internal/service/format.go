package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount форматирует сумму с символом валюты и разделителями
// тысяч, без нулевой дробной части: ₹45,000 или ₹12.50.
func FormatAmount(symbol string, d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	s := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	if frac == "00" {
		frac = ""
	}

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// SignedAmount ставит + перед доходом и - перед расходом
func SignedAmount(symbol string, d decimal.Decimal, income bool) string {
	if income {
		return "+" + FormatAmount(symbol, d)
	}
	return "-" + FormatAmount(symbol, d)
}
