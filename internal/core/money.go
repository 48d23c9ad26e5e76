// Package core provides the ledger record type, KPI aggregation and money formatting.
//
// This file contains the display formatting for signed monetary amounts.
package core

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en-US"

// MoneyFormatter renders amounts with exactly two fractional digits and the
// grouping separators of its locale.
//
// Values are rounded half away from zero on their shortest decimal
// representation before printing, so 2.675 renders as "2.68" rather than
// falling victim to the binary value 2.67499999...
//
// Examples (en-US):
//
//	Format(1234.5) -> "1,234.50"
//	Format(-7)     -> "-7.00"
type MoneyFormatter struct {
	mu      sync.Mutex
	printer *message.Printer
	tag     language.Tag
}

// NewMoneyFormatter returns a formatter for the given BCP-47 locale.
func NewMoneyFormatter(locale string) (*MoneyFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &MoneyFormatter{printer: message.NewPrinter(tag), tag: tag}, nil
}

// Format renders v for display.
func (f *MoneyFormatter) Format(v float64) string {
	rounded := decimal.NewFromFloat(v).Round(2).InexactFloat64()

	// message.Printer keeps per-call state and is not safe for concurrent use.
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.printer.Sprintf("%.2f", rounded)
}

// Locale returns the formatter's language tag.
func (f *MoneyFormatter) Locale() string {
	return f.tag.String()
}

var defaultFormatter = mustFormatter(DefaultLocale)

func mustFormatter(locale string) *MoneyFormatter {
	f, err := NewMoneyFormatter(locale)
	if err != nil {
		panic(err)
	}
	return f
}

// FormatMoney formats v with the default en-US formatter.
func FormatMoney(v float64) string {
	return defaultFormatter.Format(v)
}
