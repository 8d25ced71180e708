package valueobject

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is the locale used to present amounts when none is configured
const DefaultLocale = "es-ES"

// CurrencySymbol prefixes every formatted amount
const CurrencySymbol = "$"

// Money is a value object representing a monetary amount in the storefront's
// single currency. It is immutable - all operations return new Money instances
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal amount
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// ZeroMoney returns a zero amount
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// MultiplyByInt returns a new Money multiplied by an integer
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor))}
}

// String returns the amount with two fraction digits, locale independent
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// Format renders the amount for display in the given BCP 47 locale with
// exactly two fraction digits, prefixed by the currency symbol.
// Unknown locales fall back to DefaultLocale.
func (m Money) Format(locale string) string {
	return CurrencySymbol + FormatAmount(m.amount, locale)
}

// FormatAmount renders a decimal with exactly two fraction digits in the given locale
func FormatAmount(amount decimal.Decimal, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	p := message.NewPrinter(tag)
	rounded := amount.Round(2).InexactFloat64()
	return p.Sprint(number.Decimal(rounded, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
