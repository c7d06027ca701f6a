package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/eventbus"
	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
	kafkaInfra "github.com/fastygo/taskboard/internal/infrastructure/kafka"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	"github.com/fastygo/taskboard/usecase"
	analyticsUC "github.com/fastygo/taskboard/usecase/analytics"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	gamificationUC "github.com/fastygo/taskboard/usecase/gamification"
	notificationUC "github.com/fastygo/taskboard/usecase/notification"
	projectUC "github.com/fastygo/taskboard/usecase/project"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type repositories struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		App:      cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(context.Background())
	defer cancel()

	mon := monitor.New(0, zapLogger)
	repos := openStorage(appCtx, cfg, zapLogger, manager, mon)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	clock := usecase.SystemClock
	bus := eventbus.New(zapLogger)
	analytics := analyticsUC.New(zapLogger, clock)
	gamification := gamificationUC.New(zapLogger, clock)
	notifications := notificationUC.New(zapLogger, clock)
	bus.Subscribe(analytics)
	bus.Subscribe(gamification)
	bus.Subscribe(notifications)

	if cfg.Kafka.Enabled() {
		relay := services.NewEventRelay(kafkaInfra.NewWriter(cfg.Kafka, zapLogger), zapLogger)
		bus.Subscribe(relay)
		manager.Register("kafka_relay", relay.Close)
	}

	taskUseCase := taskUC.New(repos.tasks, bus, zapLogger)
	projectUseCase := projectUC.New(repos.projects, zapLogger, clock)

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		zapLogger.Warn("JWT_SECRET is empty; using an ephemeral secret, tokens will not survive a restart", zap.String("env", cfg.Environment))
	}
	authUseCase := authUC.New(repos.users, repos.sessions, notifications, authUC.Config{
		Secret:     secret,
		Issuer:     cfg.JWT.Issuer,
		SessionTTL: cfg.Session.TTL,
	}, zapLogger, clock)

	scheduler, err := services.NewDeadlineScheduler(taskUseCase, mon, zapLogger, services.SchedulerConfig{
		Interval:  cfg.Deadline.CheckInterval,
		Threshold: cfg.Deadline.Threshold,
	})
	if err != nil {
		zapLogger.Fatal("deadline scheduler setup failed", zap.Error(err))
	}
	scheduler.Start()
	manager.Register("deadline_scheduler", scheduler.Stop)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Project:      apiHandler.NewProjectHandler(projectUseCase, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(notifications, ctxAdapter, zapLogger),
		Gamification: apiHandler.NewGamificationHandler(gamification, ctxAdapter, zapLogger),
		Analytics:    apiHandler.NewAnalyticsHandler(analytics, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, cfg.Storage.Driver, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(secret, repos.sessions, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("sessions", cfg.Session.Driver),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()
	zapLogger.Info("shutting down", zap.Duration("timeout", cfg.Context.ShutdownTimeout))

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openStorage builds the repositories selected by configuration and registers
// their checks and shutdown hooks.
func openStorage(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger, manager *lifecycle.Manager, mon *monitor.Monitor) repositories {
	var repos repositories

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(ctx, cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		mon.Register("postgresql", monitor.PostgresCheck(pool))
		repos.tasks = postgres.NewTaskRepository(pool)
		repos.projects = postgres.NewProjectRepository(pool)
		repos.users = postgres.NewUserRepository(pool)

	case config.DriverBolt:
		db, err := boltdb.Open(cfg.Storage.BoltPath, boltRepo.Buckets, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to open bolt store", zap.Error(err))
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return db.Close()
		})
		mon.Register("bolt", monitor.BoltCheck(db, boltRepo.BucketTasks))
		repos.tasks = boltRepo.NewTaskRepository(db)
		repos.projects = boltRepo.NewProjectRepository(db)
		repos.users = boltRepo.NewUserRepository(db)

	default:
		repos.tasks = memory.NewTaskRepository()
		repos.projects = memory.NewProjectRepository()
		repos.users = memory.NewUserRepository()
	}

	switch cfg.Session.Driver {
	case config.DriverRedis:
		redisClient, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		mon.Register("redis", monitor.RedisCheck(redisClient))
		repos.sessions = redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
	default:
		repos.sessions = memory.NewSessionRepository()
	}

	return repos
}
