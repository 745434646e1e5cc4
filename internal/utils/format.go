package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateOnly    = "2006-01-02"
	DateTime    = "2006-01-02 15:04"
	DateTimeSec = "2006-01-02 15:04:05"
	TimeOnly    = "15:04:05"
)

// Currency formats an amount with a currency symbol and two decimals.
// USD (or empty) uses "$"; other currencies prefix with the code.
func Currency(amount decimal.Decimal, currency string) string {
	return symbol(currency) + amount.StringFixed(2)
}

// GroupedCurrency is Currency with thousands separators, for summary totals.
func GroupedCurrency(amount decimal.Decimal, currency string) string {
	s := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	return sign + symbol(currency) + groupThousands(whole) + "." + frac
}

func symbol(currency string) string {
	if currency != "" && currency != "USD" {
		return currency + " "
	}
	return "$"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Percent formats a 0..100 share with one decimal.
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// OrDefault returns s, or fallback when s is blank.
func OrDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// TimeOrDash formats a time value using the given layout, or returns "—" if zero.
func TimeOrDash(t time.Time, layout string) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format(layout)
}
