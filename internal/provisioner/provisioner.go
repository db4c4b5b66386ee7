// Package provisioner implements the RuleProvisioner: a ticking
// reconciliation loop that keeps the evaluator's live rule set equal to the
// cross product of alarm rule templates and currently-active nodes.
package provisioner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/joeypjx/fleet-manager/internal/action"
	"github.com/joeypjx/fleet-manager/internal/core/domain"
	"github.com/joeypjx/fleet-manager/internal/core/port"
	"github.com/joeypjx/fleet-manager/internal/telemetry"
)

// DefaultSyncInterval is the provisioner's default reconciliation period
// (§4.5).
const DefaultSyncInterval = 20 * time.Second

// DefaultLivenessWindow is how recently a node must have reported metrics to
// be considered active and eligible for provisioning.
const DefaultLivenessWindow = 5 * time.Minute

// Provisioner reconciles templates x active nodes into the evaluator's rule
// map on a timer, optionally also on a cron schedule for operators who want
// provisioning aligned to a calendar boundary rather than a fixed period.
type Provisioner struct {
	templates      port.TemplateRepository
	cache          port.MetricCache
	evaluator      port.RuleEvaluator
	eventRepo      port.EventRepository
	syncInterval   time.Duration
	livenessWindow time.Duration
	cronSpec       string

	stop chan struct{}
	done chan struct{}
}

// Config configures a Provisioner. Zero values select the package defaults;
// CronSpec, if non-empty, additionally triggers a sync on that schedule.
type Config struct {
	SyncInterval   time.Duration
	LivenessWindow time.Duration
	CronSpec       string
}

func New(templates port.TemplateRepository, cache port.MetricCache, evaluator port.RuleEvaluator, eventRepo port.EventRepository, cfg Config) *Provisioner {
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	window := cfg.LivenessWindow
	if window <= 0 {
		window = DefaultLivenessWindow
	}
	return &Provisioner{
		templates:      templates,
		cache:          cache,
		evaluator:      evaluator,
		eventRepo:      eventRepo,
		syncInterval:   interval,
		livenessWindow: window,
		cronSpec:       cfg.CronSpec,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Start runs the reconciliation loop until ctx is canceled or Stop is called.
func (p *Provisioner) Start(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.syncInterval)
	defer ticker.Stop()

	var cronChan <-chan time.Time
	var c *cron.Cron
	if p.cronSpec != "" {
		c = cron.New()
		ch := make(chan time.Time, 1)
		_, err := c.AddFunc(p.cronSpec, func() {
			select {
			case ch <- time.Now():
			default:
			}
		})
		if err != nil {
			telemetry.LogError(ctx, "invalid provisioner cron spec, ignoring", err)
		} else {
			c.Start()
			defer c.Stop()
			cronChan = ch
		}
	}

	p.synchronize(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.synchronize(ctx)
		case <-cronChan:
			p.synchronize(ctx)
		}
	}
}

// Stop signals the reconciliation loop to exit and waits for it to finish.
func (p *Provisioner) Stop() {
	close(p.stop)
	<-p.done
}

// synchronize loads all templates, lists the currently-active nodes, and
// adds/removes evaluator rules so the managed set equals exactly
// templates x active nodes, preserving any manually-added rule whose id
// doesn't carry the provisioner's "templateId:nodeId" shape (§4.5).
func (p *Provisioner) synchronize(ctx context.Context) {
	start := time.Now()
	metrics := telemetry.GetMetrics()

	templates, err := p.templates.LoadAllTemplates(ctx)
	if err != nil {
		telemetry.LogError(ctx, "provisioner failed to load templates", err)
		return
	}

	activeNodes := p.cache.ActiveNodeIDs(p.livenessWindow)
	metrics.CacheActiveNodes.Set(float64(len(activeNodes)))

	wanted := make(map[string]struct{}, len(templates)*len(activeNodes))
	added, removed := 0, 0

	for _, tmpl := range templates {
		for _, nodeID := range activeNodes {
			ruleID := domain.NewRuleID(tmpl.TemplateID, nodeID)
			wanted[ruleID] = struct{}{}
		}
	}

	managed := p.evaluator.ManagedRuleIDs()
	managedSet := make(map[string]struct{}, len(managed))
	for _, id := range managed {
		managedSet[id] = struct{}{}
	}

	for _, tmpl := range templates {
		for _, nodeID := range activeNodes {
			ruleID := domain.NewRuleID(tmpl.TemplateID, nodeID)
			if _, ok := managedSet[ruleID]; ok {
				continue
			}
			rule := p.buildRule(tmpl, nodeID, ruleID)
			p.evaluator.AddRule(rule)
			added++
		}
	}

	for _, id := range managed {
		if !(&domain.AlarmRule{RuleID: id}).IsProvisioned() {
			continue // manually-added rule, never reclaimed
		}
		if _, ok := wanted[id]; !ok {
			p.evaluator.RemoveRule(id)
			removed++
		}
	}

	metrics.ProvisionerRulesAdded.Add(float64(added))
	metrics.ProvisionerRulesRemoved.Add(float64(removed))
	metrics.ProvisionerSyncDuration.Observe(time.Since(start).Seconds())
}

func (p *Provisioner) buildRule(tmpl *domain.AlarmRuleTemplate, nodeID, ruleID string) *domain.AlarmRule {
	cache := p.cache
	metricName := tmpl.MetricName
	actions := make([]domain.Action, 0, len(tmpl.Actions))
	for _, a := range tmpl.Actions {
		switch a.Type() {
		case domain.ActionDatabase:
			actions = append(actions, action.NewDatabaseAction(p.eventRepo))
		default:
			actions = append(actions, action.NewLogAction())
		}
	}

	return &domain.AlarmRule{
		RuleID:                ruleID,
		TemplateID:            tmpl.TemplateID,
		NodeID:                nodeID,
		MetricName:            metricName,
		AlarmType:             tmpl.AlarmType,
		AlarmLevel:            tmpl.AlarmLevel,
		ContentTemplate:       tmpl.ContentTemplate,
		TriggerCountThreshold: tmpl.TriggerCountThreshold,
		Condition:             tmpl.Condition,
		Actions:               actions,
		Resource: func() float64 {
			return cache.GetMetric(nodeID, metricName)
		},
	}
}
