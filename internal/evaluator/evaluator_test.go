package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

type countingAction struct {
	fired []domain.EventKind
}

func (a *countingAction) Type() domain.ActionType { return domain.ActionLog }
func (a *countingAction) Execute(rule *domain.AlarmRule) {
	a.fired = append(a.fired, rule.CurrentEventKind())
}

func newTestRule(value float64, threshold int, action *countingAction) *domain.AlarmRule {
	return &domain.AlarmRule{
		RuleID:                "high-cpu:node-1",
		Condition:             domain.NewGreaterThan(90),
		TriggerCountThreshold: threshold,
		Actions:               []domain.Action{action},
		Resource:              func() float64 { return value },
	}
}

func TestEvaluator_DebouncesBeforeTriggering(t *testing.T) {
	action := &countingAction{}
	rule := newTestRule(95, 3, action)

	e := New(0)
	e.AddRule(rule)

	e.tick(context.Background())
	assert.False(t, rule.IsTriggered)
	assert.Empty(t, action.fired)

	e.tick(context.Background())
	assert.False(t, rule.IsTriggered)

	e.tick(context.Background())
	assert.True(t, rule.IsTriggered)
	require.Len(t, action.fired, 1)
	assert.Equal(t, domain.EventTriggered, action.fired[0])

	// Staying above threshold must not fire again.
	e.tick(context.Background())
	assert.Len(t, action.fired, 1)
}

func TestEvaluator_RecoversImmediatelyOnFirstMiss(t *testing.T) {
	action := &countingAction{}
	rule := newTestRule(95, 1, action)

	e := New(0)
	e.AddRule(rule)
	e.tick(context.Background())
	require.True(t, rule.IsTriggered)

	rule.Resource = func() float64 { return 10 }
	e.tick(context.Background())

	assert.False(t, rule.IsTriggered)
	require.Len(t, action.fired, 2)
	assert.Equal(t, domain.EventRecovered, action.fired[1])
}

func TestEvaluator_AddRemoveRule(t *testing.T) {
	e := New(0)
	rule := newTestRule(0, 1, &countingAction{})
	e.AddRule(rule)
	assert.Contains(t, e.ManagedRuleIDs(), rule.RuleID)

	e.RemoveRule(rule.RuleID)
	assert.NotContains(t, e.ManagedRuleIDs(), rule.RuleID)
}

func TestEvaluator_IntermittentMissesResetTheCounter(t *testing.T) {
	action := &countingAction{}
	rule := newTestRule(95, 3, action)

	e := New(0)
	e.AddRule(rule)

	e.tick(context.Background())
	e.tick(context.Background())

	rule.Resource = func() float64 { return 10 }
	e.tick(context.Background())
	assert.Equal(t, 0, rule.ConsecutiveTriggerCount)

	rule.Resource = func() float64 { return 95 }
	e.tick(context.Background())
	e.tick(context.Background())
	assert.False(t, rule.IsTriggered)
	e.tick(context.Background())
	assert.True(t, rule.IsTriggered)
}
