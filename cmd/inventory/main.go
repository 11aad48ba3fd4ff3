package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/inventory/internal/config"
	"github.com/Skotchmaster/inventory/internal/db"
	"github.com/Skotchmaster/inventory/internal/events"
	"github.com/Skotchmaster/inventory/internal/hash"
	"github.com/Skotchmaster/inventory/internal/httpserver"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/metrics"
	authmw "github.com/Skotchmaster/inventory/internal/middleware/auth"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/search"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(ctx, gdb)
	}
	cancel()
	if err != nil {
		logger.Error("db_init_failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	var publisher service.Publisher = service.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := events.EnsureTopics(ctx, cfg.KafkaBrokers[0], service.TopicUserEvents, service.TopicProductEvents); err != nil {
			logger.Warn("kafka_topics_error", "error", err)
		}
		cancel()

		producer, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_init_failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		publisher = producer
	}

	bg, stopBackground := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer stopBackground()

	base := repo.NewGormRepo(gdb)
	var products service.ProductStore = repo.NewProductRepo(base)
	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		client, err := search.NewClient(ctx, search.ClientConfig{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err == nil {
			ix := search.NewIndex(products, client, cfg.ESIndex)
			if err = ix.EnsureIndex(ctx); err == nil {
				products = ix
				go ix.Run(bg, time.Minute)
			}
		}
		cancel()
		if err != nil {
			logger.Warn("es_init_failed", "reason", "falling back to database search", "error", err)
		}
	}

	issuer := tokens.NewService(tokens.Config{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	authSvc := service.NewAuthService(repo.NewUserRepo(base), issuer, hash.Bcrypt{}, publisher)
	productSvc := service.NewProductService(products, service.Paging{
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	}, publisher)

	e := httpserver.New(logger, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		ProductHandler: &httpserver.ProductHTTP{Svc: productSvc},
		Bearer:         authmw.NewBearerMiddleware(issuer),
		Metrics:        metrics.New(cfg.ServiceName),
		DB:             gdb,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_listen_failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	stopBackground()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_failed", "error", err)
	}

	logger.Info("server_stopped")
}
