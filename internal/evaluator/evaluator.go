// Package evaluator implements the AlarmEvaluator: a ticking debounce state
// machine that reads the metric cache through each rule's bound resource
// closure and dispatches declarative actions on trigger/recovery transitions.
package evaluator

import (
	"context"
	"sync"
	"time"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
	"github.com/joeypjx/fleet-manager/internal/telemetry"
)

// DefaultTickInterval is the evaluator's default poll period (§4.4); the
// spec's configurable range is 1-5s.
const DefaultTickInterval = time.Second

// Evaluator owns the live rule map and advances every rule's debounce state
// once per tick. AddRule/RemoveRule are safe to call from the provisioner's
// goroutine concurrently with the running tick loop.
type Evaluator struct {
	mu    sync.Mutex
	rules map[string]*domain.AlarmRule

	tickInterval time.Duration
	stop         chan struct{}
	done         chan struct{}
}

// New constructs an Evaluator. interval <= 0 selects DefaultTickInterval.
func New(interval time.Duration) *Evaluator {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Evaluator{
		rules:        make(map[string]*domain.AlarmRule),
		tickInterval: interval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// AddRule inserts or replaces a rule. The rule is stored as given; its
// IsTriggered flag and debounce counter are not reset.
func (e *Evaluator) AddRule(rule *domain.AlarmRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules[rule.RuleID] = rule
}

// RemoveRule drops a rule from the live set; a no-op if absent.
func (e *Evaluator) RemoveRule(ruleID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rules, ruleID)
}

// ManagedRuleIDs snapshots the currently-managed rule ids.
func (e *Evaluator) ManagedRuleIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.rules))
	for id := range e.rules {
		ids = append(ids, id)
	}
	return ids
}

// Start runs the tick loop until ctx is canceled or Stop is called.
func (e *Evaluator) Start(ctx context.Context) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// Stop signals the tick loop to exit and waits for it to finish.
func (e *Evaluator) Stop() {
	close(e.stop)
	<-e.done
}

// tick snapshots the rule map, then evaluates each rule without holding the
// lock — keeping AddRule/RemoveRule calls from the provisioner unblocked for
// the duration of a pass over a potentially large rule set.
func (e *Evaluator) tick(ctx context.Context) {
	start := time.Now()

	e.mu.Lock()
	snapshot := make([]*domain.AlarmRule, 0, len(e.rules))
	for _, rule := range e.rules {
		snapshot = append(snapshot, rule)
	}
	e.mu.Unlock()

	for _, rule := range snapshot {
		e.evaluateRule(ctx, rule)
	}

	metrics := telemetry.GetMetrics()
	metrics.EvaluatorTickDuration.Observe(time.Since(start).Seconds())
	metrics.EvaluatorRulesManaged.Set(float64(len(snapshot)))
}

// evaluateRule advances one rule's debounce state machine (§4.4):
//   - a condition match increments the consecutive-trigger counter; once it
//     reaches the threshold the rule transitions to triggered and fires once
//   - any non-match immediately resets the counter; a prior triggered state
//     transitions to recovered and fires once
//
// Neither transition fires again while state is unchanged — debouncing
// guards only entry into TRIGGERED, recovery is immediate on the first miss.
func (e *Evaluator) evaluateRule(ctx context.Context, rule *domain.AlarmRule) {
	value := rule.Resource()
	rule.LastValue = value
	matched := rule.Condition.IsTriggered(value)

	if matched {
		if rule.ConsecutiveTriggerCount < rule.TriggerCountThreshold {
			rule.ConsecutiveTriggerCount++
		}
		if !rule.IsTriggered && rule.ConsecutiveTriggerCount >= rule.TriggerCountThreshold {
			rule.IsTriggered = true
			e.fire(ctx, rule, domain.EventTriggered)
		}
		return
	}

	rule.ConsecutiveTriggerCount = 0
	if rule.IsTriggered {
		rule.IsTriggered = false
		e.fire(ctx, rule, domain.EventRecovered)
	}
}

func (e *Evaluator) fire(ctx context.Context, rule *domain.AlarmRule, kind domain.EventKind) {
	telemetry.GetMetrics().EventsTotal.WithLabelValues(string(kind)).Inc()
	for _, a := range rule.Actions {
		a.Execute(rule)
	}
}
