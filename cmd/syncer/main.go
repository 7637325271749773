package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"otomoto_sync/internal/config"
	"otomoto_sync/internal/httpapi"
	"otomoto_sync/internal/media"
	"otomoto_sync/internal/notifier"
	"otomoto_sync/internal/reconciler"
	"otomoto_sync/internal/resolver"
	"otomoto_sync/internal/schedule"
	"otomoto_sync/internal/service"
	"otomoto_sync/internal/source/otomoto"
	"otomoto_sync/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize RabbitMQ notifier
	notify, err := notifier.NewRabbitMQ(notifier.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
		Throttle:   cfg.Sync.NotifyThrottle,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer notify.Close()

	// Refuse to start without complete API credentials: a sync engine that
	// cannot authenticate would only churn out error cycles.
	if err := cfg.API.Validate(); err != nil {
		logger.Error("api credentials incomplete", "error", err)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if sendErr := notify.Send(ctx,
			"Synchronization disabled: API credentials missing",
			err.Error(), "missing_api_creds"); sendErr != nil {
			logger.Warn("credentials notification failed", "error", sendErr)
		}
		cancel()
		os.Exit(1)
	}

	// Initialize stores
	listingStore := postgres.NewListingStore(db)
	termStore := postgres.NewTermStore(db)
	attachmentStore := postgres.NewAttachmentStore(db)
	optionStore := postgres.NewOptionStore(db)
	lockStore := postgres.NewLockStore(db)
	txManager := postgres.NewTransactionManager(db)

	mediaStore, err := media.NewStore(media.Config{
		Dir:             cfg.Media.Dir,
		DownloadTimeout: cfg.Media.DownloadTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize media store", "error", err)
		os.Exit(1)
	}

	// Initialize Otomoto source
	client := otomoto.New(otomoto.Config{
		BaseURL:      cfg.API.BaseURL,
		ClientID:     cfg.API.ClientID,
		ClientSecret: cfg.API.ClientSecret,
		Email:        cfg.API.Email,
		Password:     cfg.API.Password,
		Timeout:      cfg.API.Timeout,
	}, logger)

	categoryResolver := resolver.New(client, termStore, nil, logger)

	rec := reconciler.New(
		reconciler.Config{
			ConditionFilter: cfg.Sync.ConditionFilter,
			MaxPhotos:       cfg.Media.MaxPhotos,
		},
		listingStore,
		termStore,
		categoryResolver,
		attachmentStore,
		mediaStore,
		txManager,
		logger,
	)

	sched := schedule.NewScheduler(logger)

	runner := service.NewBatchRunner(
		service.Config{
			PageSize:        cfg.Sync.PageSize,
			FirstBatchDelay: cfg.Sync.FirstBatchDelay,
			InterBatchDelay: cfg.Sync.InterBatchDelay,
			LockTimeout:     cfg.Sync.LockTimeout,
			MaxPages:        cfg.Sync.MaxPages,
			DevMaxActive:    cfg.Sync.DevMaxActive,
		},
		client,
		rec,
		listingStore,
		optionStore,
		lockStore,
		notify,
		sched,
		logger,
	)

	sched.Register(service.HookMasterSync, func(ctx context.Context) {
		if err := runner.InitiateCycle(ctx); err != nil {
			logger.Error("failed to initiate cycle", "error", err)
		}
	})
	sched.Register(service.HookProcessBatch, runner.ProcessBatchStep)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	sched.Start(ctx)
	sched.ScheduleRecurring(cfg.Sync.MasterInterval, service.HookMasterSync)
	sched.ScheduleOnceAt(time.Now().Add(cfg.Sync.InitialDelay), service.HookMasterSync)

	// Admin API
	router := mux.NewRouter()
	httpapi.NewSyncHandler(runner, logger).RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.Admin.Addr,
		Handler: router,
	}
	go func() {
		logger.Info("admin api listening", "addr", cfg.Admin.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin api server error", "error", err)
			cancel()
		}
	}()

	logger.Info("starting otomoto syncer",
		"master_interval", cfg.Sync.MasterInterval,
		"page_size", cfg.Sync.PageSize,
		"condition_filter", cfg.Sync.ConditionFilter,
	)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin api shutdown error", "error", err)
	}
	sched.Stop()
	logger.Info("shutdown complete")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
