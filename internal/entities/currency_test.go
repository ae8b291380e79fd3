package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrencyInfo_Known(t *testing.T) {
	meta := CurrencyInfo("GNF")
	assert.Equal(t, "FCFA", meta.Symbol)
	assert.NotEmpty(t, meta.Name)
}

func TestCurrencyInfo_UnknownFallsBackToCode(t *testing.T) {
	meta := CurrencyInfo("ZZZ")
	assert.Equal(t, "ZZZ", meta.Name)
	assert.Equal(t, "ZZZ", meta.Symbol)
}

func TestIsZeroDecimal(t *testing.T) {
	assert.True(t, IsZeroDecimal("GNF"))
	assert.True(t, IsZeroDecimal("JPY"))
	assert.False(t, IsZeroDecimal("USD"))
	assert.False(t, IsZeroDecimal("EUR"))
}

func TestSymbolIsPrefix(t *testing.T) {
	assert.True(t, SymbolIsPrefix("USD"))
	assert.True(t, SymbolIsPrefix("EUR"))
	assert.False(t, SymbolIsPrefix("GNF"))
	assert.False(t, SymbolIsPrefix("XOF"))
}

func TestUnsupportedCurrencyError_NamesBothCodes(t *testing.T) {
	err := &UnsupportedCurrencyError{From: "USD", To: "ZZZ"}
	assert.Contains(t, err.Error(), "USD")
	assert.Contains(t, err.Error(), "ZZZ")
}
