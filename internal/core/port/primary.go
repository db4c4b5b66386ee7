package port

import (
	"context"
	"encoding/json"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

// ============================================================================
// PRIMARY PORTS (Driving)
// These interfaces define what the application OFFERS to the outside world.
// They are IMPLEMENTED by the core services.
// They are CALLED by adapters (http handlers, cli, tests, etc.)
// ============================================================================

// TemplateService offers template admin operations to the HTTP/CLI layer.
type TemplateService interface {
	// SaveTemplate validates and upserts a template from its JSON wire form
	// (§4.6). Rejects malformed input before any persistence occurs.
	SaveTemplate(ctx context.Context, raw json.RawMessage) error
	// ListTemplates returns all templates in their JSON wire form.
	ListTemplates(ctx context.Context) ([]json.RawMessage, error)
	// DeleteTemplate removes a template by id.
	DeleteTemplate(ctx context.Context, templateID string) error
	// TestTemplate dry-runs a template's condition against a node's current
	// cached value without mutating any rule's trigger state.
	TestTemplate(ctx context.Context, templateID, nodeID string) (*TestResult, error)
}

// TestResult is the outcome of a dry-run evaluation.
type TestResult struct {
	Value     float64 `json:"value"`
	Triggered bool    `json:"triggered"`
	Condition string  `json:"condition"`
}

// EventService offers read access to persisted alarm events.
type EventService interface {
	RecentEvents(ctx context.Context, limit int) ([]*domain.AlarmEvent, error)
}

// IngestService offers the metric-update ingress described in §6.1.
type IngestService interface {
	UpdateNodeMetrics(ctx context.Context, nodeID string, snapshot domain.MetricSnapshot) error
}
