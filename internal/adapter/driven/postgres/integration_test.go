//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgadapter "github.com/joeypjx/fleet-manager/internal/adapter/driven/postgres"
	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

type testContext struct {
	pool      *pgxpool.Pool
	container testcontainers.Container
	ctx       context.Context
}

func setupTestDB(t *testing.T) *testContext {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fleet_manager_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	return &testContext{pool: pool, container: container, ctx: ctx}
}

func (tc *testContext) cleanup(t *testing.T) {
	tc.pool.Close()
	if err := tc.container.Terminate(tc.ctx); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func TestTemplateRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupTestDB(t)
	defer tc.cleanup(t)

	repo := pgadapter.NewTemplateRepository(tc.pool)
	require.NoError(t, repo.CreateTables(tc.ctx))

	tmpl := &domain.AlarmRuleTemplate{
		TemplateID:            "high-cpu",
		MetricName:            "cpu.usage",
		AlarmType:             "resource",
		AlarmLevel:            "critical",
		ContentTemplate:       "{resourceName} {condition}, value={value}",
		TriggerCountThreshold: 3,
		Condition:             domain.NewAnd(domain.NewGreaterThan(90), domain.NewLessThan(101)),
		Actions:               []domain.Action{loggingOnlyAction{}},
	}

	t.Run("save and load round-trips the condition tree", func(t *testing.T) {
		require.NoError(t, repo.SaveTemplate(tc.ctx, tmpl))

		loaded, err := repo.LoadAllTemplates(tc.ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)

		got := loaded[0]
		assert.Equal(t, tmpl.TemplateID, got.TemplateID)
		assert.Equal(t, tmpl.TriggerCountThreshold, got.TriggerCountThreshold)
		assert.Equal(t, domain.ConditionAnd, got.Condition.Type())
		assert.Len(t, got.Condition.Children(), 2)
		assert.True(t, got.Condition.IsTriggered(95))
		assert.False(t, got.Condition.IsTriggered(50))
	})

	t.Run("re-saving replaces the prior subtree rather than duplicating it", func(t *testing.T) {
		tmpl.Condition = domain.NewGreaterThan(80)
		require.NoError(t, repo.SaveTemplate(tc.ctx, tmpl))

		loaded, err := repo.LoadAllTemplates(tc.ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, domain.ConditionGreaterThan, loaded[0].Condition.Type())
	})

	t.Run("delete removes the template", func(t *testing.T) {
		require.NoError(t, repo.DeleteTemplate(tc.ctx, tmpl.TemplateID))

		loaded, err := repo.LoadAllTemplates(tc.ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded)

		err = repo.DeleteTemplate(tc.ctx, tmpl.TemplateID)
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})
}

func TestEventRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupTestDB(t)
	defer tc.cleanup(t)

	repo := pgadapter.NewEventRepository(tc.pool)
	require.NoError(t, repo.CreateTable(tc.ctx))

	event := &domain.AlarmEvent{
		Timestamp:  time.Now(),
		RuleID:     "high-cpu:1-1-1",
		TemplateID: "high-cpu",
		NodeID:     "1-1-1",
		MetricName: "cpu.usage",
		Value:      97.5,
		AlarmType:  "resource",
		AlarmLevel: "critical",
		EventType:  domain.EventTriggered,
		Details:    "cpu.usage > 90, value=97.50",
	}

	t.Run("insert then recent events returns it first", func(t *testing.T) {
		require.NoError(t, repo.InsertEvent(tc.ctx, event))
		assert.NotZero(t, event.ID)

		events, err := repo.RecentEvents(tc.ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, event.RuleID, events[0].RuleID)
		assert.Equal(t, domain.EventTriggered, events[0].EventType)
	})
}

type loggingOnlyAction struct{}

func (loggingOnlyAction) Type() domain.ActionType   { return domain.ActionLog }
func (loggingOnlyAction) Execute(*domain.AlarmRule) {}
