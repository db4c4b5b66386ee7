package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

func TestGetMetric_UnknownNode(t *testing.T) {
	c := New()
	assert.Equal(t, 0.0, c.GetMetric("missing", "cpu.usage"))
}

func TestGetMetric_SimpleDottedPath(t *testing.T) {
	c := New()
	c.Update("node-1", domain.MetricSnapshot{
		"cpu": map[string]interface{}{"usage": 42.5},
	})
	assert.Equal(t, 42.5, c.GetMetric("node-1", "cpu.usage"))
}

func TestGetMetric_BareKey(t *testing.T) {
	c := New()
	c.Update("node-1", domain.MetricSnapshot{"temperature": 55.0})
	assert.Equal(t, 55.0, c.GetMetric("node-1", "temperature"))
}

func TestGetMetric_IndexedPath(t *testing.T) {
	c := New()
	c.Update("node-1", domain.MetricSnapshot{
		"disks": []interface{}{
			map[string]interface{}{"name": "sda", "usagePercent": 30.0},
			map[string]interface{}{"name": "sdb", "usagePercent": 88.0},
		},
	})
	assert.Equal(t, 88.0, c.GetMetric("node-1", "disks[name=sdb].usagePercent"))
	assert.Equal(t, 0.0, c.GetMetric("node-1", "disks[name=sdc].usagePercent"))
}

func TestGetMetric_JSONPointer(t *testing.T) {
	c := New()
	c.Update("node-1", domain.MetricSnapshot{
		"cpu": map[string]interface{}{"usage": 77.0},
	})
	assert.Equal(t, 77.0, c.GetMetric("node-1", "/cpu/usage"))
}

func TestGetMetric_NonNumericLeafReturnsZero(t *testing.T) {
	c := New()
	c.Update("node-1", domain.MetricSnapshot{"status": "ok"})
	assert.Equal(t, 0.0, c.GetMetric("node-1", "status"))
}

func TestActiveNodeIDs(t *testing.T) {
	c := New()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	c.Update("stale", domain.MetricSnapshot{"temperature": 1.0})

	c.now = func() time.Time { return fixed.Add(10 * time.Minute) }
	c.Update("fresh", domain.MetricSnapshot{"temperature": 1.0})

	c.now = func() time.Time { return fixed.Add(10*time.Minute + time.Second) }
	active := c.ActiveNodeIDs(5 * time.Minute)

	assert.NotContains(t, active, "stale")
	assert.Contains(t, active, "fresh")
}
