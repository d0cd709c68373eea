// Package main - точка входа движка прогрессии BrainSpark.
//
// Worker отвечает за:
// - Обработку доменных событий (начисление XP, стрики, бейджи)
// - Периодический обход пользователей для выдачи бейджей
// - Пересчёт Redis-таблицы XP
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brainspark/brainspark-engine/config"
	"github.com/brainspark/brainspark-engine/internal/application/command"
	"github.com/brainspark/brainspark-engine/internal/application/eventhandler"
	"github.com/brainspark/brainspark-engine/internal/domain/progression"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/internal/infrastructure/messaging"
	"github.com/brainspark/brainspark-engine/internal/infrastructure/persistence/postgres"
	"github.com/brainspark/brainspark-engine/internal/infrastructure/persistence/redis"
	"github.com/brainspark/brainspark-engine/internal/infrastructure/scheduler"
	"github.com/brainspark/brainspark-engine/internal/infrastructure/scheduler/jobs"
	"github.com/brainspark/brainspark-engine/pkg/logger"
	"github.com/brainspark/brainspark-engine/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	// Создаём корневой контекст с возможностью отмены
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем приложение
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	appLog := setupAppLogger(cfg)
	log.Info("starting BrainSpark progression engine",
		"env", string(cfg.App.Environment),
		"debug", cfg.App.Debug,
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	// Проверяем соединение: при старте база может быть ещё не готова,
	// поэтому пингуем с повторами.
	dbRetrier := retry.DatabaseRetrier()
	if err := dbRetrier.Do(ctx, func(ctx context.Context) error {
		return dbConn.Ping(ctx)
	}); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	health, err := dbConn.Health(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	log.Info("database connection established",
		"ping_latency", health.PingLatency.String(),
		"max_conns", health.MaxConns,
		"idle_conns", health.IdleConns,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var progressCache *redis.ProgressCache
	var xpBoard *redis.XPBoardCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			progressCache = redis.NewProgressCache(redisCache)
			xpBoard = redis.NewXPBoardCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	progressRepo := postgres.NewProgressRepository(dbConn)
	badgeRepo := postgres.NewBadgeRepository(dbConn)
	userBadgeRepo := postgres.NewUserBadgeRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBusConfig.AsyncMode = true
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ ОБРАБОТЧИКОВ КОМАНД
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing command handlers...")
	calc := progression.NewCalculator(cfg.Progression.LevelStep)

	var cacheInvalidator progression.CacheInvalidator
	if progressCache != nil {
		cacheInvalidator = progressCache
	}

	addXPHandler := command.NewAddXPHandler(progressRepo, calc, cacheInvalidator, eventBus)

	assignBadgesHandler := command.NewAssignBadgesHandler(
		badgeRepo,
		userBadgeRepo,
		progressRepo,
		eventBus,
		appLog,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ПОДПИСКА ОБРАБОТЧИКОВ СОБЫТИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("subscribing event handlers...")

	if xpBoard != nil && cfg.Features.IsEnabled(config.FeatureXPBoard, nil) {
		onXPGained := eventhandler.NewOnXPGainedHandler(xpBoard, log)
		if err := eventBus.Subscribe(onXPGained.EventType(), onXPGained.Handle); err != nil {
			return fmt.Errorf("failed to subscribe xp board handler: %w", err)
		}
	}

	if cfg.Features.IsEnabled(config.FeatureStreakMilestoneBonus, nil) {
		milestoneCfg := eventhandler.DefaultStreakMilestoneConfig()
		milestoneCfg.BonusXP = cfg.Streak.MilestoneBonusXP
		onMilestone := eventhandler.NewOnStreakMilestoneHandler(
			&xpGrantAdapter{handler: addXPHandler},
			log,
			milestoneCfg,
		)
		if err := eventBus.Subscribe(onMilestone.EventType(), onMilestone.Handle); err != nil {
			return fmt.Errorf("failed to subscribe milestone handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. ПЛАНИРОВЩИК ФОНОВЫХ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		log.Info("initializing scheduler...")
		schedCfg := scheduler.DefaultSchedulerConfig()
		schedCfg.Logger = log
		schedCfg.Timezone = cfg.App.Location
		sched = scheduler.NewScheduler(schedCfg)

		if cfg.Features.IsEnabled(config.FeatureBadgeSweep, nil) {
			sweepCfg := jobs.DefaultAssignBadgesConfig()
			sweepCfg.Timeout = cfg.Scheduler.JobTimeout
			sweepJob := jobs.NewAssignBadgesJob(assignBadgesHandler, log, sweepCfg)
			if err := sched.Register(sweepJob, scheduler.NewIntervalSchedule(cfg.Scheduler.AssignBadgesInterval)); err != nil {
				return fmt.Errorf("failed to register badge sweep job: %w", err)
			}
		}

		if xpBoard != nil && cfg.Features.IsEnabled(config.FeatureXPBoard, nil) {
			rebuildCfg := jobs.DefaultRebuildXPBoardConfig()
			rebuildCfg.Timeout = cfg.Scheduler.JobTimeout
			rebuildJob := jobs.NewRebuildXPBoardJob(progressRepo, xpBoard, log, rebuildCfg)
			if err := sched.Register(rebuildJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildXPBoardInterval)); err != nil {
				return fmt.Errorf("failed to register xp board rebuild job: %w", err)
			}
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("BrainSpark progression engine is running",
		"timezone", cfg.App.Timezone,
	)

	// Ожидаем сигнал завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	// Начинаем graceful shutdown
	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// xpGrantAdapter адаптирует AddXPHandler под интерфейс XPGranter
// обработчика milestone-событий.
type xpGrantAdapter struct {
	handler *command.AddXPHandler
}

func (a *xpGrantAdapter) Grant(ctx context.Context, userID string, amount int, source string) error {
	_, err := a.handler.Handle(ctx, command.AddXPCommand{
		UserID: userID,
		Amount: amount,
		Source: source,
	})
	return err
}

var _ eventhandler.XPGranter = (*xpGrantAdapter)(nil)
var _ shared.EventPublisher = (*messaging.InMemoryEventBus)(nil)

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// setupAppLogger настраивает логгер прикладного слоя.
func setupAppLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}
