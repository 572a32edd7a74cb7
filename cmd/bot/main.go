package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sewman/uwip-bot/internal/app"
	"github.com/sewman/uwip-bot/internal/bot"
	"github.com/sewman/uwip-bot/internal/cache"
	"github.com/sewman/uwip-bot/internal/config"
	"github.com/sewman/uwip-bot/internal/dialog"
	"github.com/sewman/uwip-bot/internal/domain/dashboard"
	"github.com/sewman/uwip-bot/internal/domain/documents"
	"github.com/sewman/uwip-bot/internal/domain/journal"
	"github.com/sewman/uwip-bot/internal/domain/session"
	"github.com/sewman/uwip-bot/internal/domain/tenant"
	"github.com/sewman/uwip-bot/internal/i18n"
	"github.com/sewman/uwip-bot/internal/infra/db"
	httpx "github.com/sewman/uwip-bot/internal/infra/http"
	"github.com/sewman/uwip-bot/internal/infra/kv"
	"github.com/sewman/uwip-bot/internal/infra/logger"
	"github.com/sewman/uwip-bot/internal/infra/metrics"
	"github.com/sewman/uwip-bot/internal/wipapi"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config/example.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	store, err := kv.Open(cfg.Storage.Path, log)
	if err != nil {
		log.Error("local store open failed", "err", err, "path", cfg.Storage.Path)
		return
	}
	defer func() { _ = store.Close() }()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, pool)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	client := wipapi.New(wipapi.Options{
		MasterURL:      cfg.API.MasterURL,
		AuthTimeout:    cfg.API.AuthTimeout,
		RequestTimeout: cfg.API.RequestTimeout,
		Log:            log,
		Metrics:        m,
	})

	var caches cache.Group
	home := cache.New[dashboard.HomeInfo](cfg.Cache.Size, cfg.Cache.HomeTTL)
	lists := cache.New[[]documents.Master](cfg.Cache.Size, cfg.Cache.ListTTL)
	today := cache.New[[]documents.Master](cfg.Cache.Size, cfg.Cache.TodayTTL)
	caches.Add(home)
	caches.Add(lists)
	caches.Add(today)

	a := app.New(app.Deps{
		Resolver:  tenant.NewResolver(client),
		Tenants:   tenant.NewStore(store),
		Sessions:  session.NewService(client, session.NewCredentialStore(store), log, m),
		Dashboard: dashboard.NewService(client, home, nil, log),
		Documents: documents.NewService(documents.Options{
			API:        client,
			Lists:      lists,
			Today:      today,
			Journal:    journal.NewRepo(pool),
			Invalidate: &caches,
			Metrics:    m,
			Log:        log,
		}),
		Caches: &caches,
		Log:    log,
	})

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	api.Debug = cfg.App.Env == "dev"
	log.Info("telegram authorized", "username", api.Self.UserName)

	b := bot.New(api, log, dialog.NewRepo(pool), a, i18n.Parse(cfg.App.Locale, i18n.Default()), cfg.Location())
	go func() {
		if err := b.Run(ctx, cfg.Telegram.PollTimeout); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bot loop stopped", "err", err)
		}
		stop()
	}()

	<-ctx.Done()
	api.StopReceivingUpdates()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
