package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hiring-platform/infrastructure"
	"hiring-platform/interfaces"
	"hiring-platform/usecase"
)

func main() {
	infrastructure.LoadEnv()

	cfg, err := infrastructure.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// run wires the service and blocks until a shutdown signal or a server
// failure. Deferred cleanups run before it returns.
func run(cfg *infrastructure.Config, logger *zap.Logger) error {
	db, err := infrastructure.NewMySQLConnection(cfg, logger)
	if err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	profiles := infrastructure.NewProfileRepository(db)
	scores := infrastructure.NewScoreRepository(db)
	auditRepo := infrastructure.NewAuditRepository(db)
	repos := usecase.Repositories{
		Profiles:      profiles,
		Applications:  infrastructure.NewApplicationRepository(db),
		Interviews:    infrastructure.NewInterviewRepository(db),
		Scores:        scores,
		JobScores:     scores,
		Dashboards:    infrastructure.NewDashboardRepository(db),
		CandidateData: infrastructure.NewCandidateDataRepository(db),
		AuditLogs:     auditRepo,
	}

	// Audit events go through RabbitMQ when configured.
	dbAudit := infrastructure.NewDBAuditSink(auditRepo, logger)
	var audit usecase.AuditSink = dbAudit
	if cfg.RabbitMQURL != "" {
		rmq, err := infrastructure.NewRabbitMQ(cfg.RabbitMQURL, logger)
		if err != nil {
			return fmt.Errorf("rabbitmq setup failed: %w", err)
		}
		defer rmq.Close()
		if err := rmq.ConsumeAuditEvents(auditRepo.Save); err != nil {
			return fmt.Errorf("audit consumer setup failed: %w", err)
		}
		audit = infrastructure.NewRabbitAuditSink(rmq, dbAudit, logger)
	}

	var locker usecase.Locker = infrastructure.NewLocalLocker()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("redis ping %s failed: %w", cfg.RedisAddr, err)
		}
		locker = infrastructure.NewRedisLocker(rdb, cfg.LockTTL, logger)
	}

	recorder := infrastructure.PrometheusRecorder{}
	gateway := infrastructure.NewScoringGateway(cfg, logger)

	applications := usecase.NewApplicationUsecase(repos, gateway, infrastructure.NewResumeReader(logger), locker, audit, recorder, logger)
	dashboards := usecase.NewDashboardUsecase(repos, locker, audit, recorder, logger, cfg.WeekStart)

	if cfg.SweepEnabled {
		sweeper := usecase.NewMetricsSweeper(dashboards, profiles, logger)
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("metrics sweeper setup failed: %w", err)
		}
		defer sweeper.Stop()
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), infrastructure.GinMetrics())
	router.GET("/metrics", gin.WrapH(infrastructure.MetricsHandler()))
	interfaces.NewHTTPHandler(router, &interfaces.HTTPHandler{
		Applications: applications,
		Matching:     usecase.NewMatchingUsecase(repos, logger),
		Dashboards:   dashboards,
		Privacy:      usecase.NewPrivacyUsecase(repos, audit, logger),
		Logger:       logger,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
	return nil
}
