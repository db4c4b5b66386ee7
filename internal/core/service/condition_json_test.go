package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

// s5Template is the literal save-payload from the template round-trip
// scenario: Or(Not(LessThan(5)), GreaterThan(100)) with a single Log action.
const s5Template = `{"templateId":"t","metricName":"","alarmType":"","alarmLevel":"","contentTemplate":"","triggerCountThreshold":0,"condition":{"type":"Or","conditions":[{"type":"Not","condition":{"type":"LessThan","threshold":5}},{"type":"GreaterThan","threshold":100}]},"actions":[{"type":"Log"}]}`

func TestDecodeTemplate_S5RoundTrip(t *testing.T) {
	tmpl, err := decodeTemplate(json.RawMessage(s5Template))
	require.NoError(t, err)

	or, ok := tmpl.Condition.(*domain.Or)
	require.True(t, ok, "top-level condition must decode as Or, got %T", tmpl.Condition)
	require.Len(t, or.Children(), 2)

	not, ok := or.Children()[0].(*domain.Not)
	require.True(t, ok, "first child must decode as Not, got %T", or.Children()[0])
	lessThan, ok := not.Children()[0].(*domain.LessThan)
	require.True(t, ok, "Not's child must decode as LessThan, got %T", not.Children()[0])
	assert.Equal(t, 5.0, lessThan.Threshold())

	greaterThan, ok := or.Children()[1].(*domain.GreaterThan)
	require.True(t, ok, "second child must decode as GreaterThan, got %T", or.Children()[1])
	assert.Equal(t, 100.0, greaterThan.Threshold())

	require.Len(t, tmpl.Actions, 1)
	assert.Equal(t, domain.ActionLog, tmpl.Actions[0].Type())

	// Re-encode and confirm the wire shape is JSON-equal to the S5 literal,
	// satisfying §4.6's grammar: "conditions" for Or, singular "condition" for Not.
	raw, err := encodeTemplate(tmpl)
	require.NoError(t, err)
	assert.JSONEq(t, s5Template, string(raw))
}

func TestConditionDTO_AndUsesConditionsArray(t *testing.T) {
	and := domain.NewAnd(domain.NewGreaterThan(80), domain.NewLessThan(95))
	dto := conditionToDTO(and)

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"And","conditions":[{"type":"GreaterThan","threshold":80},{"type":"LessThan","threshold":95}]}`, string(raw))
}

func TestConditionDTO_NotUsesSingularConditionObject(t *testing.T) {
	not := domain.NewNot(domain.NewLessThan(5))
	dto := conditionToDTO(not)

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Not","condition":{"type":"LessThan","threshold":5}}`, string(raw))
}

func TestDecodeTemplate_NotWithoutConditionIsInvalid(t *testing.T) {
	raw := `{"templateId":"t","condition":{"type":"Not"},"actions":[]}`
	_, err := decodeTemplate(json.RawMessage(raw))
	assert.ErrorIs(t, err, domain.ErrInvalidCondition)
}
