package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/limaJavier/coursetimetable/internal/config"
	"github.com/limaJavier/coursetimetable/internal/dataset"
	"github.com/limaJavier/coursetimetable/internal/export"
	"github.com/limaJavier/coursetimetable/internal/handler"
	"github.com/limaJavier/coursetimetable/internal/logger"
	"github.com/limaJavier/coursetimetable/internal/metrics"
	"github.com/limaJavier/coursetimetable/internal/scheduler"
	"github.com/limaJavier/coursetimetable/internal/store"
	"github.com/limaJavier/coursetimetable/pkg/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	//** Dataset
	var redisClient *redis.Client
	if cfg.Dataset.Source == "redis" {
		if redisClient, err = dataset.NewRedisClient(cfg.Redis); err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}
	datasets, err := dataset.New(cfg.Dataset, redisClient)
	if err != nil {
		logr.Fatal("failed to init dataset store", zap.Error(err))
	}

	//** Timetable store, committed after the exports
	exporter := export.NewExporter(cfg.Export.Dir)
	var (
		sink   = scheduler.MultiSink{exporter}
		reader store.Reader
	)
	switch cfg.Store {
	case "postgres":
		db, err := store.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()

		postgres := store.NewPostgresStore(db)
		if err := postgres.Migrate(context.Background()); err != nil {
			logr.Fatal("failed to migrate postgres", zap.Error(err))
		}
		sink, reader = append(sink, postgres), postgres
	case "", "memory":
		memory := store.NewMemoryStore()
		sink, reader = append(sink, memory), memory
	default:
		logr.Fatal("unknown store", zap.String("store", cfg.Store))
	}

	//** Engine
	solver, err := scheduler.NewSolver(cfg.Solver.Name, cfg.Solver.Workers, cfg.Solver.Seed, cfg.Solver.ConfigPath)
	if err != nil {
		logr.Fatal("failed to init solver", zap.Error(err))
	}
	timetabler, err := scheduler.NewTimetabler(cfg.Scheduler.Strategy, solver)
	if err != nil {
		logr.Fatal("failed to init timetabler", zap.Error(err))
	}
	policy, err := scheduler.ParseConcurrencyPolicy(cfg.Scheduler.ConcurrencyPolicy)
	if err != nil {
		logr.Fatal("failed to init scheduler", zap.Error(err))
	}
	defaults := model.StandardDefaults()
	if defaults.FacultyPolicy, err = model.ParseFacultyPolicy(cfg.Scheduler.FacultyPolicy); err != nil {
		logr.Fatal("failed to init scheduler", zap.Error(err))
	}

	m := metrics.New()
	timetableScheduler := scheduler.New(scheduler.Options{
		Source:     datasets,
		Sink:       sink,
		Timetabler: timetabler,
		Defaults:   defaults,
		Policy:     policy,
		Recorder:   m,
		Logger:     logr,
	})

	//** HTTP
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logr))
	r.Use(m.Middleware())

	timetableHandler := handler.NewTimetableHandler(timetableScheduler, datasets, reader, defaults, cfg.Scheduler.TimeLimitSeconds, logr)
	handler.RegisterRoutes(r, timetableHandler, m, exporter.Dir())

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"dataset_source", cfg.Dataset.Source,
		"store", cfg.Store,
		"solver", cfg.Solver.Name,
		"strategy", cfg.Scheduler.Strategy,
	)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
