// Command server runs the internship service: REST API, GitLab webhook
// ingestion and the background scheduler in one process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/internship-hub/internship-service/config"
	"github.com/internship-hub/internship-service/internal/application/command"
	"github.com/internship-hub/internship-service/internal/application/query"
	"github.com/internship-hub/internship-service/internal/infrastructure/external/gitlab"
	"github.com/internship-hub/internship-service/internal/infrastructure/persistence/postgres"
	"github.com/internship-hub/internship-service/internal/infrastructure/persistence/redis"
	"github.com/internship-hub/internship-service/internal/infrastructure/scheduler"
	"github.com/internship-hub/internship-service/internal/infrastructure/scheduler/jobs"
	"github.com/internship-hub/internship-service/internal/infrastructure/service"
	httpapi "github.com/internship-hub/internship-service/internal/interface/http"
	"github.com/internship-hub/internship-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION & LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})
	log.Info("starting internship service",
		logger.String("version", cfg.App.Version),
		logger.String("environment", string(cfg.App.Environment)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	conn, err := postgres.NewConnection(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database migrations applied")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (optional fork-verdict cache)
	// ─────────────────────────────────────────────────────────────────────────
	var forkCache *redis.ForkCache
	var cache *redis.Cache
	if !cfg.Redis.Disabled {
		cache, err = redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			// The service degrades gracefully: every fork check goes
			// to the GitLab API instead of the cache.
			log.Warn("redis unavailable, fork verdict cache disabled", logger.Err(err))
		} else {
			defer cache.Close()
			forkCache = redis.NewForkCache(cache, cfg.Gitlab.ForkCacheTTL)
			log.Info("redis connected")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. GITLAB CLIENT & ADAPTERS
	// ─────────────────────────────────────────────────────────────────────────
	gitlabClient := gitlab.NewClient(gitlab.ClientConfig{
		BaseURL:           cfg.Gitlab.BaseURL,
		Token:             cfg.Gitlab.Token,
		Namespace:         cfg.Gitlab.Namespace,
		Timeout:           cfg.Gitlab.RequestTimeout,
		RateLimiterConfig: gitlab.DefaultRateLimiterConfig(),
		Logger:            log,
		Debug:             cfg.App.Debug,
	})

	provisioner := service.NewGitlabAdapter(gitlabClient, forkCache, log)
	hasher := service.NewBcryptHasher(0)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	internshipRepo := postgres.NewInternshipRepository(conn)
	applicationRepo := postgres.NewApplicationRepository(conn)
	lessonRepo := postgres.NewLessonRepository(conn)
	taskRepo := postgres.NewTaskRepository(conn)
	userRepo := postgres.NewUserRepository(conn)
	solutionRepo := postgres.NewSolutionRepository(conn)
	forkRepo := postgres.NewPendingForkRepository(conn)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	publishTask := command.NewPublishTaskHandler(lessonRepo, taskRepo, userRepo, forkRepo, provisioner, log)
	retryForks := command.NewRetryPendingForksHandler(forkRepo, provisioner, log)

	deps := httpapi.Dependencies{
		CreateInternship:   command.NewCreateInternshipHandler(internshipRepo),
		ChangeStatus:       command.NewChangeInternshipStatusHandler(internshipRepo),
		SubmitApplication:  command.NewSubmitApplicationHandler(internshipRepo, applicationRepo),
		ReviewApplication:  command.NewReviewApplicationHandler(applicationRepo),
		RegisterUser:       command.NewRegisterUserHandler(userRepo, provisioner, hasher),
		ArchiveUser:        command.NewArchiveUserHandler(userRepo, userRepo, provisioner, log),
		CreateLesson:       command.NewCreateLessonHandler(lessonRepo),
		PublishLesson:      command.NewPublishLessonHandler(lessonRepo),
		CreateTask:         command.NewCreateTaskHandler(lessonRepo, taskRepo, provisioner),
		PublishTask:        publishTask,
		PublishLessonTasks: command.NewPublishLessonTasksHandler(taskRepo, publishTask),
		IngestPush:         command.NewIngestPushHandler(solutionRepo, taskRepo, userRepo, provisioner, log),
		ReviewSolution:     command.NewReviewSolutionHandler(solutionRepo),

		ListInternships: query.NewListInternshipsHandler(internshipRepo),
		ListPublished:   query.NewListPublishedHandler(lessonRepo, taskRepo),
		ListSolutions:   query.NewListSolutionsHandler(solutionRepo),
		GetReport:       query.NewGetReportHandler(userRepo, taskRepo, solutionRepo),

		HealthChecker: &healthChecker{conn: conn, cache: cache},
		Logger:        log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. BOOTSTRAP ADMINISTRATOR
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Admin.Password != "" {
		ensureAdmin := command.NewEnsureAdminHandler(userRepo, hasher)
		if err := ensureAdmin.Handle(ctx, command.EnsureAdminCommand{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		}); err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(scheduler.Config{
			Logger:     log,
			Timezone:   cfg.App.Location,
			JobTimeout: cfg.Scheduler.JobTimeout,
		})

		if err := sched.Register(
			jobs.NewRetryForksJob(retryForks, 50, log),
			scheduler.NewIntervalSchedule(cfg.Scheduler.RetryForksInterval),
		); err != nil {
			return fmt.Errorf("failed to register retry_forks job: %w", err)
		}
		if err := sched.Register(
			jobs.NewCleanupForksJob(forkRepo, 0, log),
			scheduler.NewIntervalSchedule(cfg.Scheduler.CleanupInterval),
		); err != nil {
			return fmt.Errorf("failed to register cleanup_forks job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() { _ = sched.Stop() }()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	server := httpapi.NewServer(httpapi.Config{
		Host:               cfg.HTTP.Host,
		Port:               cfg.HTTP.Port,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:     cfg.HTTP.MaxHeaderBytes,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		APIKeyHeader:       "X-API-Key",
		APIKeys:            cfg.HTTP.APIKeys,
		WebhookToken:       cfg.Gitlab.HookToken,
	}, deps)

	errCh := server.StartAsync()
	log.Info("internship service started", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Err(err))
	}

	log.Info("internship service stopped")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// healthChecker reports the state of the service's storage dependencies.
// Redis is optional, so a missing cache is reported but does not make the
// service unhealthy.
type healthChecker struct {
	conn  *postgres.Connection
	cache *redis.Cache
}

func (h *healthChecker) Check(ctx context.Context) httpapi.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := httpapi.HealthStatus{
		Healthy:    true,
		Components: make(map[string]string),
	}

	if err := h.conn.Ping(ctx); err != nil {
		status.Healthy = false
		status.Components["postgres"] = err.Error()
	} else {
		status.Components["postgres"] = "ok"
	}

	if h.cache == nil {
		status.Components["redis"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		status.Components["redis"] = err.Error()
	} else {
		status.Components["redis"] = "ok"
	}

	return status
}
