package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
	"github.com/joeypjx/fleet-manager/internal/core/port"
	"github.com/joeypjx/fleet-manager/internal/telemetry"
)

// IngestService implements port.IngestService: every agent heartbeat
// updates the live metric cache the alarm engine reads from, and
// (best-effort) forwards the same snapshot to the time-series store for
// historical queries. The time-series write is out of scope for the alarm
// engine itself and never blocks or fails the cache update.
type IngestService struct {
	cache     port.MetricCache
	tsStore   port.TimeSeriesStore
	now       func() time.Time
}

func NewIngestService(cache port.MetricCache, tsStore port.TimeSeriesStore) *IngestService {
	return &IngestService{cache: cache, tsStore: tsStore, now: time.Now}
}

func (s *IngestService) UpdateNodeMetrics(ctx context.Context, nodeID string, snapshot domain.MetricSnapshot) error {
	s.cache.Update(nodeID, snapshot)
	telemetry.GetMetrics().CacheUpdatesTotal.Inc()

	if s.tsStore == nil {
		return nil
	}
	if err := s.tsStore.WriteSample(ctx, nodeID, snapshot, s.now()); err != nil {
		telemetry.LogWarn(telemetry.WithNodeID(ctx, nodeID), "time-series write failed", slog.String("error", err.Error()))
	}
	return nil
}
