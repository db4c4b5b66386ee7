package action

import (
	"context"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
	"github.com/joeypjx/fleet-manager/internal/telemetry"
)

const (
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiReset  = "\033[0m"
)

// LogAction writes the rendered message to the application log.
// Triggered events are colorized red, recoveries green. The ANSI codes are
// written unconditionally; there is no check for whether the output is a
// terminal.
type LogAction struct{}

func NewLogAction() *LogAction { return &LogAction{} }

func (a *LogAction) Type() domain.ActionType { return domain.ActionLog }

func (a *LogAction) Execute(rule *domain.AlarmRule) {
	msg := Render(rule.ContentTemplate, rule)
	ctx := telemetry.WithRuleID(telemetry.WithNodeID(context.Background(), rule.NodeID), rule.RuleID)

	if rule.CurrentEventKind() == domain.EventTriggered {
		telemetry.LogWarn(ctx, ansiRed+msg+ansiReset)
		return
	}
	telemetry.LogInfo(ctx, ansiGreen+msg+ansiReset)
}
