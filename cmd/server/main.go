package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sagemaker-deployer/internal/adapters/primary/http/handlers"
	"sagemaker-deployer/internal/adapters/primary/http/middleware"
	"sagemaker-deployer/internal/adapters/secondary/memory"
	"sagemaker-deployer/internal/adapters/secondary/postgres"
	"sagemaker-deployer/internal/adapters/secondary/sagemaker"
	"sagemaker-deployer/internal/bootstrap"
	"sagemaker-deployer/internal/config"
	output "sagemaker-deployer/internal/core/ports/output"
	"sagemaker-deployer/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Deployment ledger (Postgres when enabled, in-process otherwise)
	var (
		pool *pgxpool.Pool
		repo output.DeploymentRepository
	)
	if cfg.Database.Enabled {
		pool, err = bootstrap.OpenPool(context.Background(), cfg.Database)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer pool.Close()
		repo = postgres.NewDeploymentRepository(pool)
	} else {
		log.Info("database disabled, keeping deployment history in memory")
		repo = memory.NewDeploymentRepository()
	}

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters
	client, err := sagemaker.NewClient(&cfg.AWS)
	if err != nil {
		log.Fatalf("create sagemaker client: %v", err)
	}

	locker, err := bootstrap.NewLocker(cfg, pool)
	if err != nil {
		log.Fatalf("create deployment locker: %v", err)
	}
	log.WithField("backend", cfg.Lock.Backend).Info("deployment locker initialized")

	// Core Services (Application Layer)
	retry := bootstrap.RetryPolicy(cfg.Retry)
	waiter := services.NewReadinessWaiter(client, cfg.Deploy.PollInterval, cfg.Deploy.ReadyTimeout, retry)
	cutoverSvc := services.NewCutoverService(client, client, waiter, locker, repo, retry)
	deploymentSvc := services.NewDeploymentService(repo, waiter)
	registrationSvc := services.NewRegistrationService(client, retry)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(cutoverSvc, deploymentSvc, registrationSvc, handlers.DeployDefaults{
		RoleARN:       cfg.Deploy.RoleARN,
		InstanceType:  cfg.Deploy.InstanceType,
		InstanceCount: cfg.Deploy.InstanceCount,
	})

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/healthz", func(c *gin.Context) {
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	// Interrupted deployments record FAILED and release their locks before the pool closes
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelDrain()

	if err := cutoverSvc.Shutdown(drainCtx); err != nil {
		log.WithError(err).Error("background deployments did not stop in time")
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
