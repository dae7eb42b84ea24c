package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/transcodehub/transcodebot/internal/artifacts"
	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/ffmpeg"
	"github.com/transcodehub/transcodebot/internal/jobs"
	jobsRepository "github.com/transcodehub/transcodebot/internal/jobs/repository"
	"github.com/transcodehub/transcodebot/internal/orchestrator"
	"github.com/transcodehub/transcodebot/internal/server"
	sessionUsecase "github.com/transcodehub/transcodebot/internal/session/usecase"
	settingsRepository "github.com/transcodehub/transcodebot/internal/settings/repository"
	settingsUsecase "github.com/transcodehub/transcodebot/internal/settings/usecase"
	"github.com/transcodehub/transcodebot/internal/transport/telegram"
	"github.com/transcodehub/transcodebot/internal/validate"
	"github.com/transcodehub/transcodebot/pkg/db/postgres"
	"github.com/transcodehub/transcodebot/pkg/db/redis"
	"github.com/transcodehub/transcodebot/pkg/logger"
	"github.com/transcodehub/transcodebot/pkg/metrics"
)

func main() {
	log.Println("Starting transcode bot")

	cfgFile, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}

	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional stores: the bot stays fully functional without either,
	// it just loses persistence.
	statusRepo := jobs.NewNoopStatusRepository()
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(cfg)
		if err != nil {
			appLogger.Warnf("could not connect to redis, job status mirror disabled: %s", err)
		} else {
			defer redisClient.Close()
			statusRepo = jobsRepository.NewJobsRedisRepository(redisClient, cfg)
			appLogger.Infof("redis connected")
		}
	}

	settingsRepo := settingsRepository.NewMemoryRepository()
	if cfg.Postgres.Enabled {
		psqlDB, err := postgres.NewPsqlDB(cfg)
		if err != nil {
			appLogger.Warnf("could not connect to db, settings kept in memory: %s", err)
		} else {
			defer psqlDB.Close()
			settingsRepo = settingsRepository.NewSettingsRepository(psqlDB)
			appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
		}
	}

	appMetrics := metrics.New()

	store, err := artifacts.NewStore(cfg, appLogger, appMetrics)
	if err != nil {
		appLogger.Fatalf("artifact store: %v", err)
	}
	sweeper := artifacts.NewSweeper(store, cfg, appLogger)

	executor := ffmpeg.NewExecutor(cfg, appLogger)
	pool := jobs.NewPool(cfg, appLogger, appMetrics, executor, statusRepo)
	settingsUC := settingsUsecase.NewSettingsUseCase(settingsRepo, appLogger)

	bot, err := telegram.NewBot(cfg, appLogger, store, settingsUC, pool)
	if err != nil {
		appLogger.Fatalf("telegram bot: %v", err)
	}

	orc := orchestrator.New(cfg, appLogger, pool, bot, settingsUC)
	manager := sessionUsecase.NewSessionManager(cfg, appLogger, appMetrics, validate.New(cfg), store, bot, orc, pool)
	orc.Bind(manager)
	bot.Bind(manager)

	statusServer := server.NewServer(cfg, pool, statusRepo, appLogger)

	pool.Start(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(ctx) })
	g.Go(func() error { return manager.Run(ctx) })
	g.Go(func() error { return sweeper.Run(ctx) })
	g.Go(func() error { return statusServer.Run(ctx) })

	if err := g.Wait(); err != nil && err != context.Canceled {
		appLogger.Errorf("shutdown: %v", err)
	}
	appLogger.Infof("bye")
}
