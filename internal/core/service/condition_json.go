package service

import (
	"encoding/json"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

// conditionDTO is the wire shape of a condition node, exactly the <C>
// grammar in §4.6: a leaf carries "threshold", And/Or carry a "conditions"
// array, and Not carries a single nested "condition" object.
type conditionDTO struct {
	Type       domain.ConditionType `json:"type"`
	Threshold  float64              `json:"threshold,omitempty"`
	Conditions []conditionDTO       `json:"conditions,omitempty"`
	Condition  *conditionDTO        `json:"condition,omitempty"`
}

func conditionToDTO(c domain.Condition) conditionDTO {
	dto := conditionDTO{Type: c.Type()}
	switch c.Type() {
	case domain.ConditionNot:
		child := conditionToDTO(c.Children()[0])
		dto.Condition = &child
	case domain.ConditionAnd, domain.ConditionOr:
		children := c.Children()
		dto.Conditions = make([]conditionDTO, len(children))
		for i, child := range children {
			dto.Conditions[i] = conditionToDTO(child)
		}
	default:
		dto.Threshold = c.Threshold()
	}
	return dto
}

func (d conditionDTO) toDomain() (domain.Condition, error) {
	switch d.Type {
	case domain.ConditionGreaterThan:
		return domain.NewGreaterThan(d.Threshold), nil
	case domain.ConditionLessThan:
		return domain.NewLessThan(d.Threshold), nil
	case domain.ConditionNot:
		if d.Condition == nil {
			return nil, domain.ErrInvalidCondition
		}
		child, err := d.Condition.toDomain()
		if err != nil {
			return nil, err
		}
		return domain.NewNot(child), nil
	case domain.ConditionAnd:
		children, err := d.childConditions()
		if err != nil {
			return nil, err
		}
		return domain.NewAnd(children...), nil
	case domain.ConditionOr:
		children, err := d.childConditions()
		if err != nil {
			return nil, err
		}
		return domain.NewOr(children...), nil
	default:
		return nil, domain.ErrUnknownConditionType
	}
}

func (d conditionDTO) childConditions() ([]domain.Condition, error) {
	out := make([]domain.Condition, 0, len(d.Conditions))
	for _, c := range d.Conditions {
		built, err := c.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

// actionDTO is the wire shape of a declared action (§4.6): a type tag plus
// an optional, currently-unused params object for forward compatibility.
type actionDTO struct {
	Type   domain.ActionType      `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// templateDTO is the wire shape of an alarm rule template.
type templateDTO struct {
	TemplateID            string       `json:"templateId"`
	MetricName            string       `json:"metricName"`
	AlarmType             string       `json:"alarmType"`
	AlarmLevel            string       `json:"alarmLevel"`
	ContentTemplate       string       `json:"contentTemplate"`
	TriggerCountThreshold int          `json:"triggerCountThreshold"`
	Condition             conditionDTO `json:"condition"`
	Actions               []actionDTO  `json:"actions"`
}

func templateToDTO(t *domain.AlarmRuleTemplate) templateDTO {
	actions := make([]actionDTO, len(t.Actions))
	for i, a := range t.Actions {
		actions[i] = actionDTO{Type: a.Type()}
	}
	return templateDTO{
		TemplateID:            t.TemplateID,
		MetricName:            t.MetricName,
		AlarmType:             t.AlarmType,
		AlarmLevel:            t.AlarmLevel,
		ContentTemplate:       t.ContentTemplate,
		TriggerCountThreshold: t.TriggerCountThreshold,
		Condition:             conditionToDTO(t.Condition),
		Actions:               actions,
	}
}

func decodeTemplate(raw json.RawMessage) (*domain.AlarmRuleTemplate, error) {
	var dto templateDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, domain.ErrInvalidTemplate
	}

	cond, err := dto.Condition.toDomain()
	if err != nil {
		return nil, err
	}

	actions := make([]domain.Action, 0, len(dto.Actions))
	for _, a := range dto.Actions {
		switch a.Type {
		case domain.ActionLog, domain.ActionDatabase:
			actions = append(actions, actionStub{typ: a.Type})
		default:
			return nil, domain.ErrUnknownActionType
		}
	}

	return &domain.AlarmRuleTemplate{
		TemplateID:            dto.TemplateID,
		MetricName:            dto.MetricName,
		AlarmType:             dto.AlarmType,
		AlarmLevel:            dto.AlarmLevel,
		ContentTemplate:       dto.ContentTemplate,
		TriggerCountThreshold: dto.TriggerCountThreshold,
		Condition:             cond,
		Actions:               actions,
	}, nil
}

func encodeTemplate(t *domain.AlarmRuleTemplate) (json.RawMessage, error) {
	return json.Marshal(templateToDTO(t))
}

// actionStub tags a template's declared action kind; TemplateService never
// executes actions, only persists and lists them, so it needs no bound
// dependencies the way the provisioner's concrete executors do.
type actionStub struct{ typ domain.ActionType }

func (a actionStub) Type() domain.ActionType   { return a.typ }
func (a actionStub) Execute(*domain.AlarmRule) {}
