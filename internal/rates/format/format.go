package format

import (
	"strings"

	"github.com/224solutions/exchange/internal/entities"
	"github.com/224solutions/exchange/internal/rates/cache"
	"github.com/224solutions/exchange/internal/rates/converter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts into display strings following per-currency
// conventions: zero-decimal currencies drop fractional digits, a fixed set
// of currencies carry their symbol as a prefix, everything else as a suffix.
type Formatter struct {
	cache   *cache.Cache
	conv    *converter.Converter
	printer *message.Printer
}

type Option func(*Formatter)

// WithLocale sets the locale used for grouping and decimal separators.
func WithLocale(tag language.Tag) Option {
	return func(f *Formatter) { f.printer = message.NewPrinter(tag) }
}

func New(rateCache *cache.Cache, conv *converter.Converter, opts ...Option) *Formatter {
	f := &Formatter{
		cache:   rateCache,
		conv:    conv,
		printer: message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Amount formats amount in the given currency. Unknown currencies degrade
// to an undecorated locale-default numeric rendering. When showAlternative
// is set and the currency is not USD, a parenthetical USD equivalent is
// appended; any failure computing it is swallowed.
func (f *Formatter) Amount(amount float64, code string, showAlternative bool) string {
	code = strings.ToUpper(code)

	rate, ok := f.cache.GetRate(code)
	if !ok {
		return f.decimal(amount, 2)
	}

	digits := 2
	if entities.IsZeroDecimal(code) {
		digits = 0
	}

	rendered := f.decimal(amount, digits)

	var out string
	if entities.SymbolIsPrefix(code) {
		out = rate.Symbol + rendered
	} else {
		out = rendered + " " + rate.Symbol
	}

	if showAlternative && code != "USD" {
		if usd, err := f.conv.ConvertLocal(amount, code, "USD"); err == nil {
			out += " (~$" + f.decimal(usd.ConvertedAmount, 0) + ")"
		}
	}

	return out
}

func (f *Formatter) decimal(v float64, digits int) string {
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
}
