package domain

import (
	"strconv"
	"time"
)

// NodeIdentity is the authoritative identity of a compute node as announced
// by its agent. box_id/slot_id/cpu_id together form the physical address the
// original cluster topology is built from; host_ip is how the Manager reaches
// it for agent-control calls (out of scope here, described only at the
// boundary).
type NodeIdentity struct {
	BoxID  int32
	SlotID int32
	CPUID  int32
	HostIP string
}

// NodeID is the string key metrics and rules are addressed by.
func (n NodeIdentity) NodeID() string {
	return nodeIDFromParts(n.BoxID, n.SlotID, n.CPUID)
}

func nodeIDFromParts(box, slot, cpu int32) string {
	return strconv.Itoa(int(box)) + "-" + strconv.Itoa(int(slot)) + "-" + strconv.Itoa(int(cpu))
}

// NodeLiveness pairs a node's last-seen snapshot with the timestamp it was
// received, the unit the MetricCache's liveness window is evaluated against.
type NodeLiveness struct {
	NodeID      string
	LastUpdated time.Time
}

// IsActive reports whether the node's last update falls within window of now.
func (l NodeLiveness) IsActive(now time.Time, window time.Duration) bool {
	return now.Sub(l.LastUpdated) < window
}
