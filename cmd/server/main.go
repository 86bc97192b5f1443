package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/shisha-ledger/internal/app"
	"github.com/linemk/shisha-ledger/internal/app/handlers"
	"github.com/linemk/shisha-ledger/internal/config"
	"github.com/linemk/shisha-ledger/internal/events"
	"github.com/linemk/shisha-ledger/internal/lib/logger"
	"github.com/linemk/shisha-ledger/internal/lib/logger/handlers/urllog"
	"github.com/linemk/shisha-ledger/internal/lib/metrics"
	"github.com/linemk/shisha-ledger/internal/service"
	"github.com/linemk/shisha-ledger/internal/storage"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(metrics.Middleware)

	// реализация слоев по работе с БД по каждому направлению
	accountRepo := storage.NewAccountRepository(application.DB)
	catalogRepo := storage.NewCatalogRepository(application.DB)
	purchaseRepo := storage.NewPurchaseRepository(application.DB)
	transferRepo := storage.NewTransferRepository(application.DB)

	// публикация событий леджера: NATS, если настроен, иначе заглушка
	var publisher events.Publisher
	if application.NATS != nil {
		publisher = events.NewNatsPublisher(log, application.NATS, cfg.NATS.Subject)
	} else {
		publisher = events.NewNoopPublisher()
	}

	balanceService := service.NewBalanceService(log, accountRepo, cfg.Ledger.AutoCreateAccounts, cfg.Ledger.StartingBalance)
	purchaseService := service.NewPurchaseService(log, application.DB, accountRepo, catalogRepo, purchaseRepo, publisher)
	transferService := service.NewTransferService(log, application.DB, accountRepo, transferRepo, publisher)
	entitlementService := service.NewEntitlementService(log, accountRepo, purchaseRepo)

	// эндпоинты леджера
	router.Get("/api/balance", handlers.BalanceHandler(log, balanceService))
	router.Post("/api/purchase", handlers.PurchaseHandler(log, purchaseService))
	router.Post("/api/transfer", handlers.TransferHandler(log, transferService))
	router.Get("/api/purchased/{username}", handlers.PurchasedHandler(log, entitlementService))
	router.Get("/api/purchased/ids/{username}", handlers.PurchasedIDsHandler(log, entitlementService))

	// служебные эндпоинты
	router.Get("/live", handlers.LiveHandler())
	router.Get("/ready", handlers.ReadyHandler(log, application.DB, application.NATS))
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
