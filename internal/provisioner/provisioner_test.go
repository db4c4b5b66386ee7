package provisioner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

type fakeTemplateRepo struct {
	templates []*domain.AlarmRuleTemplate
}

func (f *fakeTemplateRepo) CreateTables(context.Context) error { return nil }
func (f *fakeTemplateRepo) SaveTemplate(context.Context, *domain.AlarmRuleTemplate) error {
	return nil
}
func (f *fakeTemplateRepo) LoadAllTemplates(context.Context) ([]*domain.AlarmRuleTemplate, error) {
	return f.templates, nil
}
func (f *fakeTemplateRepo) DeleteTemplate(context.Context, string) error { return nil }

type fakeCache struct {
	active []string
}

func (f *fakeCache) Update(string, domain.MetricSnapshot)          {}
func (f *fakeCache) GetMetric(string, string) float64              { return 0 }
func (f *fakeCache) ActiveNodeIDs(time.Duration) []string           { return f.active }

type fakeEventRepo struct{}

func (f *fakeEventRepo) InsertEvent(context.Context, *domain.AlarmEvent) error { return nil }
func (f *fakeEventRepo) RecentEvents(context.Context, int) ([]*domain.AlarmEvent, error) {
	return nil, nil
}

type fakeEvaluator struct {
	rules map[string]*domain.AlarmRule
}

func newFakeEvaluator() *fakeEvaluator {
	return &fakeEvaluator{rules: make(map[string]*domain.AlarmRule)}
}
func (f *fakeEvaluator) AddRule(rule *domain.AlarmRule) { f.rules[rule.RuleID] = rule }
func (f *fakeEvaluator) RemoveRule(id string)           { delete(f.rules, id) }
func (f *fakeEvaluator) ManagedRuleIDs() []string {
	ids := make([]string, 0, len(f.rules))
	for id := range f.rules {
		ids = append(ids, id)
	}
	return ids
}

func template(id string) *domain.AlarmRuleTemplate {
	return &domain.AlarmRuleTemplate{
		TemplateID:            id,
		MetricName:            "cpu.usage",
		AlarmType:             "resource",
		AlarmLevel:            "critical",
		ContentTemplate:       "x",
		TriggerCountThreshold: 1,
		Condition:             domain.NewGreaterThan(90),
		Actions:               []domain.Action{testAction{}},
	}
}

type testAction struct{}

func (testAction) Type() domain.ActionType   { return domain.ActionLog }
func (testAction) Execute(*domain.AlarmRule) {}

func TestProvisioner_AddsRuleForEachTemplateNodePair(t *testing.T) {
	repo := &fakeTemplateRepo{templates: []*domain.AlarmRuleTemplate{template("high-cpu")}}
	cache := &fakeCache{active: []string{"node-1", "node-2"}}
	eval := newFakeEvaluator()

	p := New(repo, cache, eval, &fakeEventRepo{}, Config{})
	p.synchronize(context.Background())

	assert.ElementsMatch(t, []string{"high-cpu:node-1", "high-cpu:node-2"}, eval.ManagedRuleIDs())
}

func TestProvisioner_RemovesRulesForInactiveNodes(t *testing.T) {
	repo := &fakeTemplateRepo{templates: []*domain.AlarmRuleTemplate{template("high-cpu")}}
	cache := &fakeCache{active: []string{"node-1", "node-2"}}
	eval := newFakeEvaluator()

	p := New(repo, cache, eval, &fakeEventRepo{}, Config{})
	p.synchronize(context.Background())
	require.Len(t, eval.ManagedRuleIDs(), 2)

	cache.active = []string{"node-1"}
	p.synchronize(context.Background())

	assert.ElementsMatch(t, []string{"high-cpu:node-1"}, eval.ManagedRuleIDs())
}

func TestProvisioner_NeverReclaimsManuallyAddedRules(t *testing.T) {
	repo := &fakeTemplateRepo{templates: []*domain.AlarmRuleTemplate{template("high-cpu")}}
	cache := &fakeCache{active: []string{"node-1"}}
	eval := newFakeEvaluator()
	eval.AddRule(&domain.AlarmRule{RuleID: "manually-added-rule"})

	p := New(repo, cache, eval, &fakeEventRepo{}, Config{})
	p.synchronize(context.Background())

	assert.Contains(t, eval.ManagedRuleIDs(), "manually-added-rule")
	assert.Contains(t, eval.ManagedRuleIDs(), "high-cpu:node-1")
}

func TestProvisioner_ReconciliationIsIdempotent(t *testing.T) {
	repo := &fakeTemplateRepo{templates: []*domain.AlarmRuleTemplate{template("high-cpu")}}
	cache := &fakeCache{active: []string{"node-1"}}
	eval := newFakeEvaluator()

	p := New(repo, cache, eval, &fakeEventRepo{}, Config{})
	p.synchronize(context.Background())
	first := eval.rules["high-cpu:node-1"]

	p.synchronize(context.Background())
	second := eval.rules["high-cpu:node-1"]

	// The rule object is not recreated (and its debounce state not reset)
	// by a sync pass that changes nothing.
	assert.Same(t, first, second)
}
