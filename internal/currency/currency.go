// Package currency renders amounts as locale-aware currency strings.
package currency

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"budget/internal/cache"
)

// Formatter formats amounts in one currency for one locale. The zero value is
// not usable; build one with New. A Formatter is safe for concurrent use.
type Formatter struct {
	currency *money.Currency
	tag      language.Tag
	printer  *message.Printer
}

// New returns a formatter for the ISO 4217 code and BCP 47 locale. Unknown
// currencies or locales are reported as an error alongside a formatter that
// uses the fixed euro fallback, so callers can log and carry on.
func New(code, locale string) (*Formatter, error) {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	tag, err := language.Parse(locale)
	switch {
	case cur == nil:
		return &Formatter{}, fmt.Errorf("unknown currency %q", code)
	case err != nil:
		return &Formatter{}, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Formatter{
		currency: cur,
		tag:      tag,
		printer:  message.NewPrinter(tag),
	}, nil
}

// ForLocale returns a formatter for the first usable tag of an
// Accept-Language header value. It returns f when the header is empty or
// unparseable.
func (f *Formatter) ForLocale(acceptLanguage string) *Formatter {
	if f == nil || f.currency == nil || strings.TrimSpace(acceptLanguage) == "" {
		return f
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 || tags[0] == language.Und || tags[0] == f.tag {
		return f
	}
	return &Formatter{
		currency: f.currency,
		tag:      tags[0],
		printer:  message.NewPrinter(tags[0]),
	}
}

// Locale returns the locale the formatter renders for.
func (f *Formatter) Locale() string {
	if f == nil || f.currency == nil {
		return ""
	}
	return f.tag.String()
}

// Format renders amount with the currency symbol and the locale's grouping
// and decimal separators. NaN and infinities render as zero.
//
// Symbol placement comes from the currency's template, not the locale, so
// de-DE renders 100 EUR as "€100,00" rather than "100,00 €".
func (f *Formatter) Format(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	if f == nil || f.currency == nil || f.printer == nil {
		return Fallback(amount)
	}

	abs := math.Abs(amount)
	digits := f.printer.Sprint(number.Decimal(abs, number.Scale(f.currency.Fraction)))

	tpl := f.currency.Template
	if tpl == "" {
		tpl = "$1"
	}
	out := strings.Replace(tpl, "1", digits, 1)
	out = strings.Replace(out, "$", f.currency.Grapheme, 1)

	if amount < 0 && !isZero(abs, f.currency.Fraction) {
		return "-" + out
	}
	return out
}

// Fallback is the fixed "€" + two decimals rendering used when no locale
// aware formatter is available.
func Fallback(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return fmt.Sprintf("€%.2f", amount)
}

// isZero reports whether abs rounds to zero at the given precision, so that
// -0.001 does not print as "-€0.00".
func isZero(abs float64, fraction int) bool {
	return abs < 0.5*math.Pow10(-fraction)
}

// Locales hands out formatters per Accept-Language value, reusing recently
// built ones.
type Locales struct {
	base  *Formatter
	cache *cache.LRU[string, *Formatter]
}

// NewLocales wraps base with a cache of up to size per-locale formatters.
func NewLocales(base *Formatter, size int) *Locales {
	return &Locales{base: base, cache: cache.NewLRU[string, *Formatter](size)}
}

// For returns the formatter for an Accept-Language header value.
func (l *Locales) For(acceptLanguage string) *Formatter {
	key := strings.TrimSpace(acceptLanguage)
	if key == "" {
		return l.base
	}
	return l.cache.GetOrAdd(key, func() *Formatter { return l.base.ForLocale(key) })
}

// Default returns the configured formatter.
func (l *Locales) Default() *Formatter {
	return l.base
}
