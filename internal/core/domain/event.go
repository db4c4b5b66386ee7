package domain

import "time"

// AlarmEvent is an append-only record of a rule state transition.
type AlarmEvent struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	RuleID     string    `json:"ruleId"`
	TemplateID string    `json:"templateId"`
	NodeID     string    `json:"nodeId"`
	MetricName string    `json:"metricName"`
	Value      float64   `json:"value"`
	AlarmType  string    `json:"alarmType"`
	AlarmLevel string    `json:"alarmLevel"`
	EventType  EventKind `json:"eventType"`
	Details    string    `json:"details"`
}

// EventTimestampLayout is the server-local "YYYY-MM-DD HH:MM:SS" layout for
// event timestamps. The event repository does not apply it: alarm_events
// stores Timestamp as a TIMESTAMPTZ value, and the JSON encoding of
// AlarmEvent emits it in RFC 3339 form.
const EventTimestampLayout = "2006-01-02 15:04:05"
