package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	httpAdapter "github.com/joeypjx/fleet-manager/internal/adapter/driving/http"

	"github.com/joeypjx/fleet-manager/internal/adapter/driven/multicast"
	"github.com/joeypjx/fleet-manager/internal/adapter/driven/postgres"

	"github.com/joeypjx/fleet-manager/internal/cache"
	"github.com/joeypjx/fleet-manager/internal/config"
	"github.com/joeypjx/fleet-manager/internal/evaluator"
	"github.com/joeypjx/fleet-manager/internal/provisioner"
	"github.com/joeypjx/fleet-manager/internal/simulator"

	"github.com/joeypjx/fleet-manager/internal/core/service"

	"github.com/joeypjx/fleet-manager/internal/auth"
	"github.com/joeypjx/fleet-manager/internal/telemetry"

	"github.com/joeypjx/fleet-manager/pkg/database"
)

func main() {
	cfg := config.Load()

	telemetry.InitLogger(cfg.LogLevel, cfg.LogFormat)
	telemetry.InitMetrics(cfg.MetricsNamespace)

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DB)
	if err != nil {
		telemetry.LogError(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer pool.Close()

	templateRepo := postgres.NewTemplateRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	tsStore := postgres.NewTimeSeriesStore(pool)

	if err := templateRepo.CreateTables(ctx); err != nil {
		telemetry.LogError(ctx, "failed to provision template schema", err)
		os.Exit(1)
	}
	if err := eventRepo.CreateTable(ctx); err != nil {
		telemetry.LogError(ctx, "failed to provision event schema", err)
		os.Exit(1)
	}
	if err := tsStore.CreateTable(ctx); err != nil {
		telemetry.LogError(ctx, "failed to provision time-series schema", err)
		os.Exit(1)
	}

	metricCache := cache.New()
	alarmEvaluator := evaluator.New(cfg.EvaluatorTickInterval)
	ruleProvisioner := provisioner.New(templateRepo, metricCache, alarmEvaluator, eventRepo, provisioner.Config{
		SyncInterval:   cfg.ProvisionerSyncInterval,
		LivenessWindow: cfg.NodeLivenessWindow,
		CronSpec:       cfg.ProvisionerCronSpec,
	})

	templateService := service.NewTemplateService(templateRepo, metricCache)
	eventService := service.NewEventService(eventRepo)
	ingestService := service.NewIngestService(metricCache, tsStore)

	seedTemplates(ctx, cfg, templateService)

	seedWatchStop := make(chan struct{})
	if err := config.WatchSeedFile(cfg.SeedTemplatesPath, func() { seedTemplates(ctx, cfg, templateService) }, seedWatchStop); err != nil {
		telemetry.LogWarn(ctx, "failed to watch seed template file, continuing without live reseeding")
	}

	evalCtx, cancelEval := context.WithCancel(ctx)
	go alarmEvaluator.Start(evalCtx)
	go ruleProvisioner.Start(evalCtx)

	var sim *simulator.Simulator
	if cfg.SimulatorEnabled {
		sim = simulator.New(ingestService, []string{"1-1-1", "1-1-2", "1-2-1"}, simulator.DefaultInterval)
		go sim.Run(evalCtx)
	}

	beacon := multicast.New("239.255.0.1:9999", []byte("fleet-manager"))
	if err := beacon.Start(evalCtx); err != nil {
		telemetry.LogWarn(ctx, "multicast beacon failed to start, continuing without it")
	}

	templateHandler := httpAdapter.NewTemplateHandler(templateService)
	eventHandler := httpAdapter.NewEventHandler(eventService)
	ingestHandler := httpAdapter.NewIngestHandler(ingestService)

	authMiddleware := auth.NewMiddleware(auth.Config{
		Secret:    []byte(cfg.AuthSecret),
		SkipPaths: []string{"/health", "/metrics", "/nodes"},
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler)
	r.Get("/health/live", livenessHandler)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready","error":"database unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})
	r.Handle("/metrics", telemetry.Handler())

	// Agent ingest is unauthenticated: agents present no bearer token, only
	// their node identity in the URL.
	r.Mount("/nodes", ingestHandler.Routes())

	r.Route("/alarm", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Mount("/rules", templateHandler.Routes())
		r.Mount("/events", eventHandler.Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		telemetry.LogInfo(ctx, "starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.LogError(ctx, "server error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.LogInfo(ctx, "shutting down")
	cancelEval()
	close(seedWatchStop)
	alarmEvaluator.Stop()
	ruleProvisioner.Stop()
	beacon.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.LogError(ctx, "server forced to shutdown", err)
	}

	telemetry.LogInfo(ctx, "server exited")
}

func seedTemplates(ctx context.Context, cfg config.Config, svc *service.TemplateService) {
	if cfg.SeedTemplatesPath == "" {
		return
	}
	seeds, err := config.LoadSeedTemplates(cfg.SeedTemplatesPath)
	if err != nil {
		telemetry.LogWarn(ctx, "failed to load seed templates, skipping")
		return
	}
	for _, seed := range seeds {
		raw, err := json.Marshal(seed)
		if err != nil {
			continue
		}
		if err := svc.SaveTemplate(ctx, raw); err != nil {
			telemetry.LogError(ctx, "failed to save seed template", err)
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}`))
}

func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"alive"}`))
}
