// Package config loads the Manager's runtime configuration from environment
// variables, with an optional YAML seed-template bootstrap file whose
// templates the Manager saves again whenever the file changes on disk.
package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/joeypjx/fleet-manager/internal/telemetry"
	"github.com/joeypjx/fleet-manager/pkg/database"
	"github.com/joeypjx/fleet-manager/pkg/validation"
)

// Config holds every value main() needs to wire the Manager.
type Config struct {
	HTTPPort string
	DB       database.Config

	AuthSecret string

	EvaluatorTickInterval time.Duration
	ProvisionerSyncInterval time.Duration
	ProvisionerCronSpec     string
	NodeLivenessWindow      time.Duration

	LogLevel  string
	LogFormat string

	MetricsNamespace string

	SeedTemplatesPath string

	SimulatorEnabled bool
}

// Load builds a Config from the process environment, applying the same
// defaults the Manager ships with out of the box.
func Load() Config {
	cronSpec := getEnv("PROVISIONER_CRON_SPEC", "")
	if cronSpec != "" {
		if err := validation.Validate(func(v *validation.Validator) {
			v.CronExpression("PROVISIONER_CRON_SPEC", cronSpec)
		}); err != nil {
			telemetry.LogError(context.Background(), "ignoring invalid PROVISIONER_CRON_SPEC", err)
			cronSpec = ""
		}
	}

	return Config{
		HTTPPort: getEnv("PORT", "8080"),
		DB: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "fleet_manager"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		AuthSecret:              getEnv("AUTH_SECRET", "dev-secret-change-me"),
		EvaluatorTickInterval:   getEnvDuration("EVALUATOR_TICK_INTERVAL", time.Second),
		ProvisionerSyncInterval: getEnvDuration("PROVISIONER_SYNC_INTERVAL", 20*time.Second),
		ProvisionerCronSpec:     cronSpec,
		NodeLivenessWindow:      getEnvDuration("NODE_LIVENESS_WINDOW", 5*time.Minute),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
		MetricsNamespace:        getEnv("METRICS_NAMESPACE", "alarm_manager"),
		SeedTemplatesPath:       getEnv("SEED_TEMPLATES_PATH", ""),
		SimulatorEnabled:        getEnvBool("SIMULATOR_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

// SeedTemplate is the YAML shape of one bootstrap template row in the seed
// file (§13 supplemented feature).
type SeedTemplate struct {
	TemplateID            string         `yaml:"templateId" json:"templateId"`
	MetricName            string         `yaml:"metricName" json:"metricName"`
	AlarmType             string         `yaml:"alarmType" json:"alarmType"`
	AlarmLevel            string         `yaml:"alarmLevel" json:"alarmLevel"`
	ContentTemplate       string         `yaml:"contentTemplate" json:"contentTemplate"`
	TriggerCountThreshold int            `yaml:"triggerCountThreshold" json:"triggerCountThreshold"`
	Condition             map[string]any `yaml:"condition" json:"condition"`
	Actions               []map[string]any `yaml:"actions" json:"actions"`
}

// LoadSeedTemplates parses the YAML seed file at path. A missing path or
// file is not an error — seeding is entirely optional.
func LoadSeedTemplates(path string) ([]SeedTemplate, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var templates []SeedTemplate
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// WatchSeedFile invokes onChange whenever path is written to, letting an
// operator update the seed-template bootstrap file without restarting the
// Manager. It runs until stop is closed.
func WatchSeedFile(path string, onChange func(), stop <-chan struct{}) error {
	if path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					telemetry.LogInfo(context.Background(), "seed template file changed, reloading")
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				telemetry.LogError(context.Background(), "seed file watch error", err)
			}
		}
	}()

	return nil
}
