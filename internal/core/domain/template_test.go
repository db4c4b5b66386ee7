package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTemplate() *AlarmRuleTemplate {
	return &AlarmRuleTemplate{
		TemplateID:            "high-cpu",
		MetricName:            "cpu.usage",
		AlarmType:             "resource",
		AlarmLevel:            "critical",
		ContentTemplate:       "{resourceName} {condition}",
		TriggerCountThreshold: 3,
		Condition:             NewGreaterThan(90),
		Actions:               []Action{stubAction{}},
	}
}

type stubAction struct{}

func (stubAction) Type() ActionType   { return ActionLog }
func (stubAction) Execute(*AlarmRule) {}

func TestTemplateValidate(t *testing.T) {
	t.Run("valid template passes", func(t *testing.T) {
		assert.NoError(t, validTemplate().Validate())
	})

	t.Run("missing template id", func(t *testing.T) {
		tmpl := validTemplate()
		tmpl.TemplateID = ""
		assert.ErrorIs(t, tmpl.Validate(), ErrInvalidTemplate)
	})

	t.Run("zero threshold", func(t *testing.T) {
		tmpl := validTemplate()
		tmpl.TriggerCountThreshold = 0
		assert.ErrorIs(t, tmpl.Validate(), ErrInvalidTemplate)
	})

	t.Run("nil condition", func(t *testing.T) {
		tmpl := validTemplate()
		tmpl.Condition = nil
		assert.ErrorIs(t, tmpl.Validate(), ErrInvalidCondition)
	})

	t.Run("no actions", func(t *testing.T) {
		tmpl := validTemplate()
		tmpl.Actions = nil
		assert.ErrorIs(t, tmpl.Validate(), ErrInvalidTemplate)
	})

	t.Run("and with no children is invalid", func(t *testing.T) {
		tmpl := validTemplate()
		tmpl.Condition = NewAnd()
		assert.ErrorIs(t, tmpl.Validate(), ErrInvalidCondition)
	})

	t.Run("not wrapping a composite validates recursively", func(t *testing.T) {
		tmpl := validTemplate()
		tmpl.Condition = NewNot(NewAnd(NewGreaterThan(1), NewLessThan(2)))
		assert.NoError(t, tmpl.Validate())
	})
}
