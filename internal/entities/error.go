package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrRateNotFound signals a lookup for a currency the cache does not
	// hold. This is an expected outcome, not a failure.
	ErrRateNotFound = errors.New("rate not found")

	// ErrRefreshFailed wraps any remote or store failure during a rate
	// refresh. The cache keeps serving its previous values.
	ErrRefreshFailed = errors.New("rate refresh failed")
)

// UnsupportedCurrencyError is returned by local conversion when either side
// of the pair is absent from the cache.
type UnsupportedCurrencyError struct {
	From string
	To   string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency pair %s/%s", e.From, e.To)
}
