package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"weatherflow/internal/model"
)

type Config struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

const upsertSQL = `
INSERT INTO weather (station_id, temperature, humidity, wind_speed, timestamp)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (station_id, timestamp)
DO UPDATE SET temperature = EXCLUDED.temperature,
              humidity    = EXCLUDED.humidity,
              wind_speed  = EXCLUDED.wind_speed`

const schemaSQL = `
CREATE TABLE IF NOT EXISTS weather (
    station_id  TEXT             NOT NULL,
    temperature DOUBLE PRECISION NOT NULL,
    humidity    DOUBLE PRECISION NOT NULL,
    wind_speed  DOUBLE PRECISION NOT NULL,
    timestamp   TIMESTAMPTZ      NOT NULL,
    PRIMARY KEY (station_id, timestamp)
)`

// Store writes flush batches into Postgres. The pool is exclusive to the
// flush path; the query service holds its own.
type Store struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the weather table if missing. The primary key over
// (station_id, timestamp) is what makes redelivered records idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("persist: ensure schema: %w", err)
	}
	return nil
}

// Persist upserts the whole batch inside a single transaction. Either every
// record lands or none does; on failure the error surfaces to the caller
// and nothing is retried here.
func (s *Store) Persist(ctx context.Context, batch []model.Record) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("persist: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, upsertBatch(batch))
	for range batch {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("persist: upsert: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("persist: close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("persist: commit: %w", err)
	}
	return len(batch), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

func upsertBatch(records []model.Record) *pgx.Batch {
	b := &pgx.Batch{}
	for _, r := range records {
		b.Queue(upsertSQL, r.StationID, r.Temperature, r.Humidity, r.WindSpeed, r.Timestamp)
	}
	return b
}
