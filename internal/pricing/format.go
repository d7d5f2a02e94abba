package pricing

import (
	"github.com/rotisserie/eris"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders prices for display in one locale and currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter parses a BCP 47 locale (e.g. "en-AU") and an ISO 4217 code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, eris.Wrapf(err, "pricing: parse locale %q", locale)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, eris.Wrapf(err, "pricing: parse currency %q", code)
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}, nil
}

// Format renders v with the currency's narrow symbol, or "" for a nil price.
func (f *Formatter) Format(v *float64) string {
	if v == nil {
		return ""
	}
	return f.printer.Sprint(currency.NarrowSymbol(f.unit.Amount(Round2(*v))))
}

// Number renders v with locale grouping and two decimals.
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprintf("%.2f", v)
}
