package query

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"weatherflow/internal/model"
	"weatherflow/internal/persist"
)

// Store is the read side of the weather table. It holds its own pool,
// separate from the flush path's connection.
type Store interface {
	Latest(ctx context.Context) ([]model.Record, error)
	Range(ctx context.Context, station string, start, end time.Time) ([]model.Record, error)
	Stations(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

type pgStore struct {
	pool *pgxpool.Pool
}

func OpenStore(ctx context.Context, cfg persist.Config) (Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &pgStore{pool: pool}, nil
}

const latestSQL = `
SELECT DISTINCT ON (station_id) station_id, temperature, humidity, wind_speed, timestamp
FROM weather
ORDER BY station_id, timestamp DESC`

const rangeSQL = `
SELECT station_id, temperature, humidity, wind_speed, timestamp
FROM weather
WHERE station_id = $1 AND timestamp >= $2 AND timestamp <= $3
ORDER BY timestamp`

const stationsSQL = `SELECT DISTINCT station_id FROM weather ORDER BY station_id`

func (s *pgStore) Latest(ctx context.Context) ([]model.Record, error) {
	return s.queryRecords(ctx, latestSQL)
}

func (s *pgStore) Range(ctx context.Context, station string, start, end time.Time) ([]model.Record, error) {
	return s.queryRecords(ctx, rangeSQL, station, start, end)
}

func (s *pgStore) Stations(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, stationsSQL)
	if err != nil {
		return nil, fmt.Errorf("query: stations: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("query: stations: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *pgStore) queryRecords(ctx context.Context, sql string, args ...any) ([]model.Record, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var rec model.Record
		var ts time.Time
		if err := rows.Scan(&rec.StationID, &rec.Temperature, &rec.Humidity, &rec.WindSpeed, &ts); err != nil {
			return nil, fmt.Errorf("query: scan: %w", err)
		}
		rec.Timestamp = ts.UTC().Format(time.RFC3339)
		out = append(out, rec)
	}
	return out, rows.Err()
}
