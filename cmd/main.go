package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/s/eduportal/internal/config"
	"github.com/s/eduportal/internal/database"
	"github.com/s/eduportal/internal/handlers"
	"github.com/s/eduportal/internal/logging"
	"github.com/s/eduportal/internal/observability"
	"github.com/s/eduportal/internal/server"
	"github.com/s/eduportal/internal/storage"
)

func main() {
	// ---------------------------
	// 0. Конфигурация и логгер
	// ---------------------------
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logs, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logs.Closer()
	log := logs.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		log.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------
	// 1. База данных и миграции
	// ---------------------------
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	repo := storage.NewRepository(db)
	if err := database.SeedAdmin(ctx, repo, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}

	// ---------------------------
	// 2. Сессии
	// ---------------------------
	store := handlers.NewSessionStore(cfg)

	// ---------------------------
	// 3. Хендлеры и роутинг
	// ---------------------------
	h, err := handlers.NewHandler(repo, store, cfg, log)
	if err != nil {
		log.Fatal("init handlers", zap.Error(err))
	}
	if h.OAuth == nil {
		log.Info("google sign-in disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ---------------------------
	// 4. Запуск сервера
	// ---------------------------
	go func() {
		log.Info("server started", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
