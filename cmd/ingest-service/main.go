package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/guestflow/platform/pkg/bookings"
	"github.com/guestflow/platform/pkg/common/config"
	"github.com/guestflow/platform/pkg/common/database"
	"github.com/guestflow/platform/pkg/common/kafka"
	"github.com/guestflow/platform/pkg/common/logger"
	"github.com/guestflow/platform/pkg/common/middleware"
	"github.com/guestflow/platform/pkg/fieldmap"
	"github.com/guestflow/platform/pkg/importer"
	"github.com/guestflow/platform/pkg/importstatus"
	"github.com/guestflow/platform/pkg/ingest"
	"github.com/guestflow/platform/pkg/leads"
	"github.com/guestflow/platform/pkg/observability/metrics"
	"github.com/guestflow/platform/pkg/tabular"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.Close(db)

	repo := ingest.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate ingest tables")
	}

	aliases, err := fieldmap.Load(cfg.AliasConfigPath)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to load alias config, using defaults")
	}

	var remote *tabular.Client
	remote, err = tabular.NewClient(cfg)
	if err != nil {
		if errors.Is(err, tabular.ErrMissingCredentials) {
			logger.Log.Warn("remote tabular source not configured, sync endpoints disabled")
			remote = nil
		} else {
			logger.Log.WithError(err).Fatal("failed to build tabular client")
		}
	}

	var producer *kafka.Producer
	if cfg.ImportEventsTopic != "" {
		producer = kafka.NewProducer(cfg, cfg.ImportEventsTopic)
		defer producer.Close()
	}

	status := importstatus.NewStore(database.ConnectRedis(cfg), cfg.ImportStatusTTL)

	svc := importer.NewService(
		leads.NewParser(aliases),
		bookings.NewParser(aliases),
		repo,
		remote,
		producer,
		status,
		cfg.TabularLeadsTable,
		cfg.TabularBookingsTable,
	)
	handler := importer.NewHTTPHandler(svc, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RateLimit(5, 10))
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Ingest Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Ingest Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Ingest Service stopped")
}
