package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

// TemplateRepository implements port.TemplateRepository with hand-written
// pgx/v5 SQL over the normalized schema in §4.6: one row per template, a
// self-referencing condition tree, and an ordered action list.
type TemplateRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// CreateTables provisions the schema if it doesn't already exist.
func (r *TemplateRepository) CreateTables(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS alarm_templates (
	template_id             TEXT PRIMARY KEY,
	metric_name             TEXT NOT NULL,
	alarm_type              TEXT NOT NULL,
	alarm_level             TEXT NOT NULL,
	content_template        TEXT NOT NULL,
	trigger_count_threshold INT NOT NULL,
	root_condition_id       BIGINT
);

CREATE TABLE IF NOT EXISTS alarm_conditions (
	id             BIGSERIAL PRIMARY KEY,
	template_id    TEXT NOT NULL REFERENCES alarm_templates(template_id) ON DELETE CASCADE,
	parent_id      BIGINT REFERENCES alarm_conditions(id) ON DELETE CASCADE,
	position       INT NOT NULL DEFAULT 0,
	condition_type TEXT NOT NULL,
	threshold      DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS alarm_template_actions (
	id          BIGSERIAL PRIMARY KEY,
	template_id TEXT NOT NULL REFERENCES alarm_templates(template_id) ON DELETE CASCADE,
	position    INT NOT NULL DEFAULT 0,
	action_type TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alarm_conditions_parent ON alarm_conditions(parent_id);
CREATE INDEX IF NOT EXISTS idx_alarm_conditions_template ON alarm_conditions(template_id);
CREATE INDEX IF NOT EXISTS idx_alarm_template_actions_template ON alarm_template_actions(template_id);
`)
	return err
}

// SaveTemplate upserts tmpl and its whole condition/action subtree inside a
// single transaction: the prior subtree is dropped and rebuilt, which is
// simpler and cheap at template-authoring volumes.
func (r *TemplateRepository) SaveTemplate(ctx context.Context, tmpl *domain.AlarmRuleTemplate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM alarm_templates WHERE template_id = $1`, tmpl.TemplateID); err != nil {
		return fmt.Errorf("delete existing template: %w", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO alarm_templates (template_id, metric_name, alarm_type, alarm_level, content_template, trigger_count_threshold)
VALUES ($1, $2, $3, $4, $5, $6)`,
		tmpl.TemplateID, tmpl.MetricName, tmpl.AlarmType, tmpl.AlarmLevel, tmpl.ContentTemplate, tmpl.TriggerCountThreshold,
	); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	rootID, err := insertConditionTree(ctx, tx, tmpl.TemplateID, nil, 0, tmpl.Condition)
	if err != nil {
		return fmt.Errorf("insert condition tree: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE alarm_templates SET root_condition_id = $1 WHERE template_id = $2`, rootID, tmpl.TemplateID); err != nil {
		return fmt.Errorf("link root condition: %w", err)
	}

	for i, a := range tmpl.Actions {
		if _, err := tx.Exec(ctx, `
INSERT INTO alarm_template_actions (template_id, position, action_type) VALUES ($1, $2, $3)`,
			tmpl.TemplateID, i, string(a.Type()),
		); err != nil {
			return fmt.Errorf("insert action: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func insertConditionTree(ctx context.Context, tx pgx.Tx, templateID string, parentID *int64, position int, c domain.Condition) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
INSERT INTO alarm_conditions (template_id, parent_id, position, condition_type, threshold)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		templateID, parentID, position, string(c.Type()), c.Threshold(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	for i, child := range c.Children() {
		if _, err := insertConditionTree(ctx, tx, templateID, &id, i, child); err != nil {
			return 0, err
		}
	}
	return id, nil
}

type conditionRow struct {
	id            int64
	parentID      *int64
	conditionType string
	threshold     float64
}

// LoadAllTemplates loads every template, reassembling each condition tree
// and action list from the flat rows.
func (r *TemplateRepository) LoadAllTemplates(ctx context.Context) ([]*domain.AlarmRuleTemplate, error) {
	rows, err := r.pool.Query(ctx, `
SELECT template_id, metric_name, alarm_type, alarm_level, content_template, trigger_count_threshold, root_condition_id
FROM alarm_templates ORDER BY template_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.AlarmRuleTemplate
	for rows.Next() {
		var t domain.AlarmRuleTemplate
		var rootConditionID *int64
		if err := rows.Scan(&t.TemplateID, &t.MetricName, &t.AlarmType, &t.AlarmLevel, &t.ContentTemplate, &t.TriggerCountThreshold, &rootConditionID); err != nil {
			return nil, err
		}
		templates = append(templates, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range templates {
		cond, err := r.loadConditionTree(ctx, t.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("load condition tree for %s: %w", t.TemplateID, err)
		}
		t.Condition = cond

		actions, err := r.loadActions(ctx, t.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("load actions for %s: %w", t.TemplateID, err)
		}
		t.Actions = actions
	}

	return templates, nil
}

func (r *TemplateRepository) loadConditionTree(ctx context.Context, templateID string) (domain.Condition, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, parent_id, condition_type, threshold FROM alarm_conditions
WHERE template_id = $1 ORDER BY parent_id NULLS FIRST, position`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byParent := make(map[int64][]conditionRow)
	var root *conditionRow
	for rows.Next() {
		var cr conditionRow
		if err := rows.Scan(&cr.id, &cr.parentID, &cr.conditionType, &cr.threshold); err != nil {
			return nil, err
		}
		if cr.parentID == nil {
			row := cr
			root = &row
			continue
		}
		byParent[*cr.parentID] = append(byParent[*cr.parentID], cr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("no condition tree found for template %s", templateID)
	}

	return buildCondition(*root, byParent)
}

func buildCondition(row conditionRow, byParent map[int64][]conditionRow) (domain.Condition, error) {
	children := byParent[row.id]

	switch domain.ConditionType(row.conditionType) {
	case domain.ConditionGreaterThan:
		return domain.NewGreaterThan(row.threshold), nil
	case domain.ConditionLessThan:
		return domain.NewLessThan(row.threshold), nil
	case domain.ConditionNot:
		if len(children) != 1 {
			return nil, domain.ErrInvalidCondition
		}
		child, err := buildCondition(children[0], byParent)
		if err != nil {
			return nil, err
		}
		return domain.NewNot(child), nil
	case domain.ConditionAnd:
		built, err := buildChildren(children, byParent)
		if err != nil {
			return nil, err
		}
		return domain.NewAnd(built...), nil
	case domain.ConditionOr:
		built, err := buildChildren(children, byParent)
		if err != nil {
			return nil, err
		}
		return domain.NewOr(built...), nil
	default:
		return nil, domain.ErrUnknownConditionType
	}
}

func buildChildren(rows []conditionRow, byParent map[int64][]conditionRow) ([]domain.Condition, error) {
	out := make([]domain.Condition, 0, len(rows))
	for _, cr := range rows {
		c, err := buildCondition(cr, byParent)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *TemplateRepository) loadActions(ctx context.Context, templateID string) ([]domain.Action, error) {
	rows, err := r.pool.Query(ctx, `
SELECT action_type FROM alarm_template_actions WHERE template_id = $1 ORDER BY position`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.Action
	for rows.Next() {
		var actionType string
		if err := rows.Scan(&actionType); err != nil {
			return nil, err
		}
		actions = append(actions, actionPlaceholder(domain.ActionType(actionType)))
	}
	return actions, rows.Err()
}

// actionPlaceholder returns a tagged Action whose Type() round-trips through
// persistence; the provisioner resolves it to a concrete executor (bound to
// a live EventRepository/logger) when it builds runtime rules from a
// template, so storage here only needs to preserve which kind was chosen.
type storedAction struct{ typ domain.ActionType }

func (a storedAction) Type() domain.ActionType    { return a.typ }
func (a storedAction) Execute(*domain.AlarmRule) {}

func actionPlaceholder(t domain.ActionType) domain.Action {
	return storedAction{typ: t}
}

// DeleteTemplate removes a template and cascades to its conditions/actions.
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, templateID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM alarm_templates WHERE template_id = $1`, templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}
