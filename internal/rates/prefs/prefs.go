package prefs

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

const keyPrefix = "prefs:currency:"

// KV is the durable slot preferences are written to.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}

// Store remembers each user's display currency across sessions. Codes are
// not validated against the supported set: an unrecognized preference simply
// fails to resolve later.
type Store struct {
	kv              KV
	defaultCurrency string
}

func New(kv KV, defaultCurrency string) *Store {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &Store{kv: kv, defaultCurrency: strings.ToUpper(defaultCurrency)}
}

// Preferred returns the stored display currency for userID, or the default
// when nothing is set.
func (s *Store) Preferred(ctx context.Context, userID string) string {
	code, err := s.kv.Get(ctx, keyPrefix+userID)
	if err != nil || code == "" {
		if err != nil {
			slog.Debug("preference lookup failed, using default", "user", userID, "error", err)
		}
		return s.defaultCurrency
	}
	return strings.ToUpper(code)
}

// SetPreferred normalizes code to uppercase and persists it.
func (s *Store) SetPreferred(ctx context.Context, userID, code string) error {
	const op = "prefs.SetPreferred"

	if err := s.kv.Set(ctx, keyPrefix+userID, strings.ToUpper(code)); err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}
