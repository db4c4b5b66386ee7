// Package action implements the two declarative alarm actions, Log and
// Database, and the message-template placeholder substitution both share
// (§6.3).
package action

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

// Render expands a content template's {placeholder} tokens against rule's
// current state. Unknown placeholders are left untouched.
func Render(tmpl string, rule *domain.AlarmRule) string {
	replacer := strings.NewReplacer(
		"{ruleId}", rule.RuleID,
		"{templateId}", rule.TemplateID,
		"{nodeId}", rule.NodeID,
		"{metricName}", rule.MetricName,
		"{alarmType}", rule.AlarmType,
		"{alarmLevel}", rule.AlarmLevel,
		"{resourceName}", rule.ResourceName(),
		"{value}", decimal.NewFromFloat(rule.LastValue).StringFixed(2),
		"{condition}", rule.Condition.Describe(),
		"{state}", string(rule.CurrentEventKind()),
	)
	return replacer.Replace(tmpl)
}
