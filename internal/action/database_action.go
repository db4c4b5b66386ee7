package action

import (
	"context"
	"time"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
	"github.com/joeypjx/fleet-manager/internal/core/port"
	"github.com/joeypjx/fleet-manager/internal/telemetry"
)

// DatabaseAction persists a triggered/recovered transition as an AlarmEvent
// row. Repository failures are logged and swallowed — per the Action
// contract, they must never propagate into the evaluator's tick loop.
type DatabaseAction struct {
	repo port.EventRepository
	now  func() time.Time
}

func NewDatabaseAction(repo port.EventRepository) *DatabaseAction {
	return &DatabaseAction{repo: repo, now: time.Now}
}

func (a *DatabaseAction) Type() domain.ActionType { return domain.ActionDatabase }

func (a *DatabaseAction) Execute(rule *domain.AlarmRule) {
	event := &domain.AlarmEvent{
		Timestamp:  a.now(),
		RuleID:     rule.RuleID,
		TemplateID: rule.TemplateID,
		NodeID:     rule.NodeID,
		MetricName: rule.MetricName,
		Value:      rule.LastValue,
		AlarmType:  rule.AlarmType,
		AlarmLevel: rule.AlarmLevel,
		EventType:  rule.CurrentEventKind(),
		Details:    Render(rule.ContentTemplate, rule),
	}

	ctx := telemetry.WithRuleID(telemetry.WithNodeID(context.Background(), rule.NodeID), rule.RuleID)
	if err := a.repo.InsertEvent(ctx, event); err != nil {
		telemetry.LogError(ctx, "failed to persist alarm event", err)
	}
}
