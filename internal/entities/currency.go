package entities

// CurrencyMeta is static display metadata for a currency code.
type CurrencyMeta struct {
	Name   string
	Symbol string
}

// knownCurrencies is the static metadata table used when mapping persistent
// store rows into cache entries. Deliberate configuration, not logic.
var knownCurrencies = map[string]CurrencyMeta{
	"USD": {Name: "Dollar américain", Symbol: "$"},
	"EUR": {Name: "Euro", Symbol: "€"},
	"GBP": {Name: "Livre sterling", Symbol: "£"},
	"CAD": {Name: "Dollar canadien", Symbol: "C$"},
	"GNF": {Name: "Franc guinéen", Symbol: "FCFA"},
	"XOF": {Name: "Franc CFA", Symbol: "CFA"},
	"NGN": {Name: "Naira nigérian", Symbol: "₦"},
	"GHS": {Name: "Cedi ghanéen", Symbol: "₵"},
	"SLL": {Name: "Leone sierra-léonais", Symbol: "Le"},
	"LRD": {Name: "Dollar libérien", Symbol: "L$"},
	"MAD": {Name: "Dirham marocain", Symbol: "DH"},
	"CNY": {Name: "Yuan chinois", Symbol: "¥"},
	"JPY": {Name: "Yen japonais", Symbol: "¥"},
	"AED": {Name: "Dirham émirati", Symbol: "د.إ"},
}

// zeroDecimalCurrencies are rendered without fractional digits in casual
// display. Everything else gets exactly two.
var zeroDecimalCurrencies = map[string]struct{}{
	"GNF": {},
	"XOF": {},
	"SLL": {},
	"JPY": {},
	"KRW": {},
}

// prefixSymbolCurrencies place their symbol before the amount with no space
// ($1,234.00); all others append it after a space (1 234 FCFA).
var prefixSymbolCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
	"CAD": {},
}

// CurrencyInfo returns display metadata for code. Unknown codes fall back to
// the code itself as both name and symbol.
func CurrencyInfo(code string) CurrencyMeta {
	if meta, ok := knownCurrencies[code]; ok {
		return meta
	}
	return CurrencyMeta{Name: code, Symbol: code}
}

// IsZeroDecimal reports whether code is conventionally displayed without
// fractional digits.
func IsZeroDecimal(code string) bool {
	_, ok := zeroDecimalCurrencies[code]
	return ok
}

// SymbolIsPrefix reports whether the currency symbol precedes the amount.
func SymbolIsPrefix(code string) bool {
	_, ok := prefixSymbolCurrencies[code]
	return ok
}
