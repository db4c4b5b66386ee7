// Package cache implements the thread-safe last-value metric store the
// alarm engine reads from: one snapshot per node, addressed by hierarchical
// path queries, with a liveness view over recently-updated nodes.
package cache

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonpointer"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

var (
	indexedPathPattern = regexp.MustCompile(`^(\w+)\[(\w+)=([^\]]+)\]\.(\w+)$`)
	simplePathPattern  = regexp.MustCompile(`^(\w+)\.(\w+)$`)
)

type entry struct {
	snapshot    domain.MetricSnapshot
	lastUpdated time.Time
}

// Cache is the MetricCache: a single mutex guards a map of per-node
// snapshots. Every operation is short and non-blocking; readers and writers
// serialize on the same lock, matching the concurrency contract in §5.
type Cache struct {
	mu    sync.RWMutex
	nodes map[string]entry
	now   func() time.Time
}

// New constructs an empty cache. now defaults to time.Now; tests may
// substitute a deterministic clock.
func New() *Cache {
	return &Cache{
		nodes: make(map[string]entry),
		now:   time.Now,
	}
}

// Update replaces the node's snapshot and stamps it with the current time.
func (c *Cache) Update(nodeID string, snapshot domain.MetricSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes[nodeID] = entry{snapshot: snapshot, lastUpdated: c.now()}
}

// GetMetric resolves metricName against nodeID's snapshot, returning 0.0 for
// any unknown node, any path that doesn't resolve, or any leaf that isn't a
// real number. It never errors.
func (c *Cache) GetMetric(nodeID, metricName string) float64 {
	c.mu.RLock()
	e, ok := c.nodes[nodeID]
	c.mu.RUnlock()
	if !ok {
		return 0.0
	}
	return resolvePath(e.snapshot, metricName)
}

// ActiveNodeIDs returns the ids of nodes whose last update is within window
// of now.
func (c *Cache) ActiveNodeIDs(window time.Duration) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	ids := make([]string, 0, len(c.nodes))
	for id, e := range c.nodes {
		if now.Sub(e.lastUpdated) < window {
			ids = append(ids, id)
		}
	}
	return ids
}

// resolvePath implements the first-match-wins path resolution algorithm of
// §4.1: indexed pattern, simple dotted pattern, JSON-pointer, bare key,
// falling back to 0.0.
func resolvePath(snapshot domain.MetricSnapshot, path string) float64 {
	if m := indexedPathPattern.FindStringSubmatch(path); m != nil {
		arrayKey, matchKey, matchValue, targetKey := m[1], m[2], m[3], m[4]
		arr, ok := snapshot[arrayKey].([]interface{})
		if !ok {
			return 0.0
		}
		for _, el := range arr {
			obj, ok := el.(map[string]interface{})
			if !ok {
				continue
			}
			if stringify(obj[matchKey]) == matchValue {
				return toFloat(obj[targetKey])
			}
		}
		return 0.0
	}

	if m := simplePathPattern.FindStringSubmatch(path); m != nil {
		a, b := m[1], m[2]
		obj, ok := snapshot[a].(map[string]interface{})
		if !ok {
			return 0.0
		}
		return toFloat(obj[b])
	}

	if v, ok := tryJSONPointer(snapshot, path); ok {
		return v
	}

	return toFloat(snapshot[path])
}

func tryJSONPointer(snapshot domain.MetricSnapshot, path string) (float64, bool) {
	ptr, err := gojsonpointer.NewJsonPointer(path)
	if err != nil {
		return 0.0, false
	}
	val, _, err := ptr.Get(map[string]interface{}(snapshot))
	if err != nil {
		return 0.0, false
	}
	f, ok := numeric(val)
	return f, ok
}

// toFloat casts a decoded JSON leaf to float64, returning 0.0 for anything
// non-numeric (including nil and missing keys).
func toFloat(v interface{}) float64 {
	f, _ := numeric(v)
	return f
}

func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0.0, false
	}
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return trimTrailingZeros(s)
	default:
		return ""
	}
}

func trimTrailingZeros(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
