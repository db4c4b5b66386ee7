// Package simulator feeds synthetic node snapshots into the ingest path so
// the alarm engine has live data to evaluate without real agents attached —
// useful for demos and local development (§13 supplemented feature, off by
// default).
package simulator

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
	"github.com/joeypjx/fleet-manager/internal/core/port"
)

// DefaultInterval is how often the simulator pushes a new snapshot per node.
const DefaultInterval = 5 * time.Second

// Simulator drives a fixed set of fake nodes through IngestService on a
// timer, oscillating CPU/memory/temperature readings through a sine wave
// plus jitter so debounced alarms have something to trigger and recover on.
type Simulator struct {
	ingest   port.IngestService
	nodeIDs  []string
	interval time.Duration
	rng      *rand.Rand
}

func New(ingest port.IngestService, nodeIDs []string, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Simulator{
		ingest:   ingest,
		nodeIDs:  nodeIDs,
		interval: interval,
		rng:      rand.New(rand.NewSource(1)),
	}
}

// Run pushes snapshots until ctx is canceled.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			for _, nodeID := range s.nodeIDs {
				snapshot := s.snapshot(tick)
				_ = s.ingest.UpdateNodeMetrics(ctx, nodeID, snapshot)
			}
		}
	}
}

func (s *Simulator) snapshot(tick int) domain.MetricSnapshot {
	phase := float64(tick) / 6.0
	cpuUsage := 50 + 40*math.Sin(phase) + s.rng.Float64()*5
	memUsage := 60 + 20*math.Sin(phase/2) + s.rng.Float64()*5
	temperature := 45 + 15*math.Sin(phase/3) + s.rng.Float64()*2

	return domain.MetricSnapshot{
		"cpu": map[string]interface{}{
			"usage": cpuUsage,
		},
		"memory": map[string]interface{}{
			"usage": memUsage,
		},
		"temperature": temperature,
	}
}
