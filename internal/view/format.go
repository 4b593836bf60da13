package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"charity/internal/core"
)

// DateLayout is the long US-style date shown on donor cards.
const DateLayout = "January 2, 2006"

// Formatter turns amounts, counts and dates into display strings.
type Formatter struct {
	Currency string
	tag      language.Tag
}

// NewFormatter parses locale (BCP 47). An unparseable locale falls back to en-US.
func NewFormatter(currency, locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return Formatter{Currency: currency, tag: tag}
}

// printer is created per call; message.Printer is not documented as safe for concurrent use.
func (f Formatter) printer() *message.Printer {
	return message.NewPrinter(f.tag)
}

// Number groups thousands for the locale.
func (f Formatter) Number(n int64) string {
	return f.printer().Sprintf("%d", n)
}

// Whole formats an amount truncated to whole units, as the counters show it.
func (f Formatter) Whole(m core.Money) string {
	return f.Currency + f.Number(m.Units())
}

// Amount formats a donation amount. Whole amounts drop the decimals.
func (f Formatter) Amount(m core.Money) string {
	if m.Cents%100 == 0 {
		return f.Whole(m)
	}
	return f.Currency + f.printer().Sprintf("%.2f", float64(m.Cents)/100)
}

// Date formats a donation date; undated donations render as "".
func (f Formatter) Date(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format(DateLayout)
}

// Locale returns the resolved locale tag.
func (f Formatter) Locale() string {
	return f.tag.String()
}
