package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

// EventRepository implements port.EventRepository over a single append-only
// table (§4.7).
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) CreateTable(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS alarm_events (
	id          BIGSERIAL PRIMARY KEY,
	ts          TIMESTAMPTZ NOT NULL,
	rule_id     TEXT NOT NULL,
	template_id TEXT NOT NULL,
	node_id     TEXT NOT NULL,
	metric_name TEXT NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	alarm_type  TEXT NOT NULL,
	alarm_level TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	details     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alarm_events_ts ON alarm_events(ts DESC);
CREATE INDEX IF NOT EXISTS idx_alarm_events_rule ON alarm_events(rule_id);
`)
	return err
}

func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.AlarmEvent) error {
	err := r.pool.QueryRow(ctx, `
INSERT INTO alarm_events (ts, rule_id, template_id, node_id, metric_name, value, alarm_type, alarm_level, event_type, details)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		event.Timestamp, event.RuleID, event.TemplateID, event.NodeID, event.MetricName,
		event.Value, event.AlarmType, event.AlarmLevel, string(event.EventType), event.Details,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("insert alarm event: %w", err)
	}
	return nil
}

func (r *EventRepository) RecentEvents(ctx context.Context, limit int) ([]*domain.AlarmEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, ts, rule_id, template_id, node_id, metric_name, value, alarm_type, alarm_level, event_type, details
FROM alarm_events ORDER BY ts DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent alarm events: %w", err)
	}
	defer rows.Close()

	var events []*domain.AlarmEvent
	for rows.Next() {
		var e domain.AlarmEvent
		var eventType string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.RuleID, &e.TemplateID, &e.NodeID, &e.MetricName,
			&e.Value, &e.AlarmType, &e.AlarmLevel, &eventType, &e.Details); err != nil {
			return nil, fmt.Errorf("scan alarm event row: %w", err)
		}
		e.EventType = domain.EventKind(eventType)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alarm event rows: %w", err)
	}
	return events, nil
}
