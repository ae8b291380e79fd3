package entities

import "time"

// CurrencyRate is one cached exchange rate, always quoted against USD:
// 1 USD = Rate units of Code. USD itself carries Rate == 1.
type CurrencyRate struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	Rate        float64   `json:"rate"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// RateObservation is one row of the persistent rate store.
type RateObservation struct {
	BaseCurrency   string
	TargetCurrency string
	Rate           float64
	LastUpdated    time.Time
}

// ConversionResult records a conversion together with the effective
// multiplier that was applied. ConvertedAmount is rounded to 2 decimals.
type ConversionResult struct {
	Amount          float64 `json:"amount"`
	FromCurrency    string  `json:"fromCurrency"`
	ToCurrency      string  `json:"toCurrency"`
	Rate            float64 `json:"rate"`
	ConvertedAmount float64 `json:"convertedAmount"`
}
