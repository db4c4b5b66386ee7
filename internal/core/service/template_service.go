package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
	"github.com/joeypjx/fleet-manager/internal/core/port"
)

// TemplateService implements port.TemplateService: validates, persists, and
// dry-run tests alarm rule templates.
type TemplateService struct {
	repo  port.TemplateRepository
	cache port.MetricCache
}

func NewTemplateService(repo port.TemplateRepository, cache port.MetricCache) *TemplateService {
	return &TemplateService{repo: repo, cache: cache}
}

func (s *TemplateService) SaveTemplate(ctx context.Context, raw json.RawMessage) error {
	tmpl, err := decodeTemplate(raw)
	if err != nil {
		return err
	}
	if err := tmpl.Validate(); err != nil {
		return err
	}
	return s.repo.SaveTemplate(ctx, tmpl)
}

func (s *TemplateService) ListTemplates(ctx context.Context) ([]json.RawMessage, error) {
	templates, err := s.repo.LoadAllTemplates(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, 0, len(templates))
	for _, t := range templates {
		raw, err := encodeTemplate(t)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, templateID string) error {
	return s.repo.DeleteTemplate(ctx, templateID)
}

// TestTemplate dry-runs a stored template's condition against a node's
// current cached metric value, without touching the evaluator's live rule
// set or firing any action — a supplemental safety-net endpoint for
// operators authoring new templates (§13).
func (s *TemplateService) TestTemplate(ctx context.Context, templateID, nodeID string) (*port.TestResult, error) {
	templates, err := s.repo.LoadAllTemplates(ctx)
	if err != nil {
		return nil, err
	}

	var tmpl *domain.AlarmRuleTemplate
	for _, t := range templates {
		if t.TemplateID == templateID {
			tmpl = t
			break
		}
	}
	if tmpl == nil {
		return nil, domain.ErrTemplateNotFound
	}

	value := s.cache.GetMetric(nodeID, tmpl.MetricName)
	return &port.TestResult{
		Value:     value,
		Triggered: tmpl.Condition.IsTriggered(value),
		Condition: fmt.Sprintf("%s %s", tmpl.MetricName, tmpl.Condition.Describe()),
	}, nil
}
