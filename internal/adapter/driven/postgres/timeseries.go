package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

// TimeSeriesStore implements port.TimeSeriesStore: an append-only table of
// raw snapshots, one row per heartbeat, kept for historical queries outside
// the alarm engine's hot path.
type TimeSeriesStore struct {
	pool *pgxpool.Pool
}

func NewTimeSeriesStore(pool *pgxpool.Pool) *TimeSeriesStore {
	return &TimeSeriesStore{pool: pool}
}

func (s *TimeSeriesStore) CreateTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS node_metric_samples (
	id          BIGSERIAL PRIMARY KEY,
	node_id     TEXT NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL,
	snapshot    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_node_metric_samples_node_time ON node_metric_samples(node_id, observed_at DESC);
`)
	return err
}

func (s *TimeSeriesStore) WriteSample(ctx context.Context, nodeID string, snapshot domain.MetricSnapshot, observedAt time.Time) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO node_metric_samples (node_id, observed_at, snapshot) VALUES ($1, $2, $3)`,
		nodeID, observedAt, raw)
	return err
}
