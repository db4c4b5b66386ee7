package domain

import "strings"

// AlarmRule is a concrete instantiation of a template bound to one node. It
// carries a copy of the template's metadata plus the runtime debounce state
// the evaluator advances on every tick.
type AlarmRule struct {
	RuleID                string
	TemplateID             string
	NodeID                 string
	MetricName             string
	AlarmType              string
	AlarmLevel             string
	ContentTemplate        string
	TriggerCountThreshold  int
	Condition              Condition
	Actions                []Action

	// Resource is the bound closure (nodeId, metricName) -> f64 over the
	// metric cache; the rule itself never touches the cache directly.
	Resource func() float64

	// Runtime state, mutated only by the evaluator's tick loop.
	IsTriggered             bool
	ConsecutiveTriggerCount int
	LastValue               float64
}

// NewRuleID builds the canonical "templateId:nodeId" rule identifier.
func NewRuleID(templateID, nodeID string) string {
	return templateID + ":" + nodeID
}

// IsProvisioned reports whether this rule's id follows the provisioner's
// templateId:nodeId shape, distinguishing provisioner-owned rules from
// manually added ones the provisioner must never reclaim.
func (r *AlarmRule) IsProvisioned() bool {
	return strings.Contains(r.RuleID, ":")
}

// CurrentEventKind reports which event kind an action fired right now would
// represent, based on the flag the evaluator just set.
func (r *AlarmRule) CurrentEventKind() EventKind {
	if r.IsTriggered {
		return EventTriggered
	}
	return EventRecovered
}

// ResourceName renders the human-readable "Metric '<m>' on node '<n>'" form
// used by the {resourceName} template placeholder.
func (r *AlarmRule) ResourceName() string {
	return "Metric '" + r.MetricName + "' on node '" + r.NodeID + "'"
}
