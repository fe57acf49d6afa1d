package watermark

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultPostgresTable = "hubspot_watermarks"

type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

type PostgresStoreDependencies struct {
	Context context.Context
	URI     string
	Table   string
}

func NewPostgresStore(deps PostgresStoreDependencies) (*PostgresStore, error) {
	pool, err := pgxpool.New(deps.Context, deps.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	table := deps.Table
	if table == "" {
		table = DefaultPostgresTable
	}

	store := &PostgresStore{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
	}

	if err := store.ensureTable(deps.Context); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure watermark table: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) ensureTable(ctx context.Context) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			last_fetch_epoch_ms BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, s.table)

	_, err := s.pool.Exec(ctx, createTableSQL)

	return err
}

func (s *PostgresStore) Get(ctx context.Context, key domain.WatermarkKey) (int64, bool, error) {
	var value int64

	query := fmt.Sprintf(`SELECT last_fetch_epoch_ms FROM %s WHERE key = $1`, s.table)

	err := s.pool.QueryRow(ctx, query, key.String()).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get watermark %s: %w", key, err)
	}

	return value, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key domain.WatermarkKey, value int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, last_fetch_epoch_ms, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET last_fetch_epoch_ms = GREATEST(%s.last_fetch_epoch_ms, EXCLUDED.last_fetch_epoch_ms),
			updated_at = NOW()
	`, s.table, s.table)

	if _, err := s.pool.Exec(ctx, query, key.String(), value); err != nil {
		return fmt.Errorf("failed to put watermark %s: %w", key, err)
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key domain.WatermarkKey) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table)

	if _, err := s.pool.Exec(ctx, query, key.String()); err != nil {
		return fmt.Errorf("failed to delete watermark %s: %w", key, err)
	}

	return nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	s.pool.Close()

	return nil
}
