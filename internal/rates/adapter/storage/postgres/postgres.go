package postgres

import (
	"context"
	"time"

	"github.com/224solutions/exchange/internal/entities"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		db: pool,
	}
}

func InitStorage(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgres.InitStorage"

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 10 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	return NewStorage(pool), nil
}

// LatestObservations returns every stored rate observation ordered newest
// first. Deduplication per currency pair happens in the cache loader.
func (s *Storage) LatestObservations(ctx context.Context) ([]entities.RateObservation, error) {
	const op = "storage.postgres.LatestObservations"

	rows, err := s.db.Query(ctx, `
        SELECT base_currency, target_currency, rate, last_updated
        FROM exchange_rates
        ORDER BY last_updated DESC
    `)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer rows.Close()

	var observations []entities.RateObservation
	for rows.Next() {
		var obs entities.RateObservation
		if err = rows.Scan(&obs.BaseCurrency, &obs.TargetCurrency, &obs.Rate, &obs.LastUpdated); err != nil {
			return nil, errors.Wrap(err, op)
		}
		observations = append(observations, obs)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return observations, nil
}

func (s *Storage) Close() {
	s.db.Close()
}
