// Package format renders amounts for display using locale-aware grouping and
// decimal separators.
package format

import (
	"fmt"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var symbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"CHF": "CHF",
}

// Formatter formats currency amounts for one locale and currency.
type Formatter struct {
	tag         language.Tag
	printer     *message.Printer
	unit        currency.Unit
	symbol      string
	symbolFirst bool
}

// NewFormatter creates a formatter for a BCP 47 locale such as "de-DE" and an
// ISO 4217 currency code such as "EUR".
func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", currencyCode, err)
	}

	symbol, ok := symbols[unit.String()]
	if !ok {
		symbol = unit.String()
	}

	base, _ := tag.Base()
	return &Formatter{
		tag:         tag,
		printer:     message.NewPrinter(tag),
		unit:        unit,
		symbol:      symbol,
		symbolFirst: base.String() == "en",
	}, nil
}

// MustFormatter is like NewFormatter but panics on invalid arguments.
func MustFormatter(locale, currencyCode string) *Formatter {
	f, err := NewFormatter(locale, currencyCode)
	if err != nil {
		panic(err)
	}
	return f
}

var defaultFormatter = MustFormatter(constants.DefaultLocale, constants.DefaultCurrencyCode)

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// CurrencyCode returns the ISO code of the formatter's currency.
func (f *Formatter) CurrencyCode() string {
	return f.unit.String()
}

// Currency returns a currency string with symbol and separators, e.g.
// "1.468,81 €" for de-DE or "-€1,468.81" for en-US. NaN and infinities
// render as zero.
func (f *Formatter) Currency(amount float64) string {
	rounded := RoundCents(amount)
	number := f.number(rounded)
	if !f.symbolFirst {
		return number + " " + f.symbol
	}
	if strings.HasPrefix(number, "-") {
		return "-" + f.symbol + strings.TrimPrefix(number, "-")
	}
	return f.symbol + number
}

// NumericCurrency returns the amount with separators but without a symbol.
func (f *Formatter) NumericCurrency(amount float64) string {
	return f.number(RoundCents(amount))
}

func (f *Formatter) number(value float64) string {
	return f.printer.Sprintf("%.2f", value)
}

// RoundCents rounds half away from zero to whole cents. NaN and infinities
// become 0.
func RoundCents(amount float64) float64 {
	d := decimal.NewFromFloat(mathutil.FiniteOrZero(amount)).Round(constants.CurrencyPlaces)
	if d.IsZero() {
		return 0
	}
	return d.InexactFloat64()
}

// Currency formats an amount in the default locale (de-DE, EUR).
func Currency(amount float64) string {
	return defaultFormatter.Currency(amount)
}

// NumericCurrency formats an amount in the default locale without a symbol.
func NumericCurrency(amount float64) string {
	return defaultFormatter.NumericCurrency(amount)
}
