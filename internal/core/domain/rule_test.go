package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRuleID(t *testing.T) {
	assert.Equal(t, "high-cpu:1-1-1", NewRuleID("high-cpu", "1-1-1"))
}

func TestIsProvisioned(t *testing.T) {
	assert.True(t, (&AlarmRule{RuleID: "high-cpu:1-1-1"}).IsProvisioned())
	assert.False(t, (&AlarmRule{RuleID: "manual-rule"}).IsProvisioned())
}

func TestCurrentEventKind(t *testing.T) {
	triggered := &AlarmRule{IsTriggered: true}
	assert.Equal(t, EventTriggered, triggered.CurrentEventKind())

	recovered := &AlarmRule{IsTriggered: false}
	assert.Equal(t, EventRecovered, recovered.CurrentEventKind())
}

func TestResourceName(t *testing.T) {
	rule := &AlarmRule{MetricName: "cpu.usage", NodeID: "1-1-1"}
	assert.Equal(t, "Metric 'cpu.usage' on node '1-1-1'", rule.ResourceName())
}
