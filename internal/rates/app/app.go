package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/224solutions/exchange/deploy/config"
	"github.com/224solutions/exchange/internal/rates/adapter/api_client/ratesource"
	"github.com/224solutions/exchange/internal/rates/adapter/storage/postgres"
	"github.com/224solutions/exchange/internal/rates/adapter/storage/redis"
	"github.com/224solutions/exchange/internal/rates/cache"
	"github.com/224solutions/exchange/internal/rates/converter"
	"github.com/224solutions/exchange/internal/rates/format"
	"github.com/224solutions/exchange/internal/rates/ports/http/public"
	"github.com/224solutions/exchange/internal/rates/prefs"
	"github.com/224solutions/exchange/internal/rates/service"
	redisPack "github.com/redis/go-redis/v9"
)

type App struct {
	cfg *config.Config
}

func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

func (a *App) Start(ctx context.Context) <-chan struct{} {
	a.initLogger()
	slog.Info("Logger initialized")

	pgStorage := a.initDatabase(ctx)
	slog.Info("Storage initialized")

	rdStorage := a.initRedis(ctx)
	slog.Info("Redis client initialized")

	remote := ratesource.NewClient(a.cfg.Rates.RemoteURL, a.cfg.Rates.RemoteTimeout)
	slog.Info("Rate source client initialized")

	rateCache := cache.New(pgStorage, remote, rdStorage, a.cfg)
	rateCache.Initialize(ctx)
	go rateCache.StartScheduler(ctx)
	slog.Info("Rate cache initialized")

	conv := converter.New(rateCache, remote)
	fmter := format.New(rateCache, conv)
	prefStore := prefs.New(rdStorage, a.cfg.Rates.DefaultCurrency)

	svc := service.NewService(rateCache, conv, fmter, prefStore)
	slog.Info("Service initialized")

	serverDone := public.StartServer(ctx, svc, a.cfg)
	slog.Info("server started", "port", a.cfg.HTTPServer.Port)

	return serverDone
}

func (a *App) initLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: false,
	}))
	slog.SetDefault(logger)
}

func (a *App) initDatabase(ctx context.Context) *postgres.Storage {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		a.cfg.Storage.Host,
		a.cfg.Storage.Port,
		a.cfg.Storage.User,
		a.cfg.Storage.Password,
		a.cfg.Storage.DBName,
		a.cfg.Storage.SSLMode,
		a.cfg.Storage.Schema,
	)

	pgStorage, err := postgres.InitStorage(ctx, dsn)
	if err != nil {
		log.Fatalln("Failed to initialize PostgreSQL storage", "error", err)
	}

	return pgStorage
}

func (a *App) initRedis(ctx context.Context) *redis.Storage {
	options := &redisPack.Options{
		Addr:     a.cfg.Redis.Host,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	}

	rdStorage, err := redis.InitStorage(ctx, options)
	if err != nil {
		log.Fatalln("Failed to initialize Redis storage", "error", err)
	}

	return rdStorage
}
