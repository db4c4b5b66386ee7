package port

import (
	"context"
	"time"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

// ============================================================================
// SECONDARY PORTS (Driven)
// These interfaces define what the application NEEDS from the outside world.
// They are IMPLEMENTED by adapters (postgres, multicast, the in-memory cache).
// ============================================================================

// TemplateRepository persists alarm rule templates in the normalized
// relational schema described in §4.6: templates, their condition trees, and
// their action lists. SaveTemplate is transactional and atomic across the
// whole subtree.
type TemplateRepository interface {
	CreateTables(ctx context.Context) error
	SaveTemplate(ctx context.Context, tmpl *domain.AlarmRuleTemplate) error
	LoadAllTemplates(ctx context.Context) ([]*domain.AlarmRuleTemplate, error)
	DeleteTemplate(ctx context.Context, templateID string) error
}

// EventRepository persists triggered/recovered alarm events. Failures here
// are logged by the caller and never propagated into the evaluation tick.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AlarmEvent) error
	RecentEvents(ctx context.Context, limit int) ([]*domain.AlarmEvent, error)
}

// MetricCache is the secondary port the evaluator and provisioner depend on
// for live node state. Implemented by internal/cache.Cache.
type MetricCache interface {
	Update(nodeID string, snapshot domain.MetricSnapshot)
	GetMetric(nodeID, metricName string) float64
	ActiveNodeIDs(window time.Duration) []string
}

// RuleEvaluator is the secondary port the provisioner drives to keep the
// live rule set in sync with templates x active nodes. Implemented by
// internal/evaluator.Evaluator.
type RuleEvaluator interface {
	AddRule(rule *domain.AlarmRule)
	RemoveRule(ruleID string)
	ManagedRuleIDs() []string
}

// TimeSeriesStore is the out-of-scope columnar store that persists raw
// metric samples for historical queries; the alarm engine never calls it
// directly, but the ingest handler forwards samples to it alongside
// updating the MetricCache. Described only at this interface per spec §1.
type TimeSeriesStore interface {
	WriteSample(ctx context.Context, nodeID string, snapshot domain.MetricSnapshot, observedAt time.Time) error
}

// BeaconAnnouncer is the out-of-scope IP multicast presence announcer;
// described only at this interface per spec §1.
type BeaconAnnouncer interface {
	Start(ctx context.Context) error
	Stop() error
}
