package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/wonlab/omics-status/pkg/common/config"
	"github.com/wonlab/omics-status/pkg/common/database"
	"github.com/wonlab/omics-status/pkg/common/kafka"
	"github.com/wonlab/omics-status/pkg/common/logger"
	"github.com/wonlab/omics-status/pkg/common/middleware"
	"github.com/wonlab/omics-status/pkg/dataset"
	"github.com/wonlab/omics-status/pkg/observability/metrics"
	"github.com/wonlab/omics-status/pkg/schema"
	"github.com/wonlab/omics-status/pkg/status"
)

func main() {
	logger.Init()
	cfg := config.Load()

	sch, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		logger.Log.WithError(err).WithField("file", cfg.SchemaFile).Warn("falling back to default reference schema")
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := dataset.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate dataset tables")
	}

	producer := kafka.NewProducer(cfg.DatasetEventTopic)
	defer producer.Close()

	svc := dataset.NewService(repo, sch,
		dataset.WithProducer(producer),
		dataset.WithCache(database.GetRedis(), cfg.ValidationCacheTTL),
		dataset.WithSheet(cfg.UploadSheetName),
		dataset.WithRowLimit(cfg.UploadMaxRows),
	)
	if err := svc.Warm(context.Background()); err != nil {
		logger.Log.WithError(err).Fatal("failed to load dataset snapshot")
	}

	datasetHandler := dataset.NewHTTPHandler(svc, cfg.MaxRequestBody)
	statusHandler := status.NewHandler(svc)

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

	router.HandleFunc("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	datasetHandler.Register(api)
	statusHandler.Register(api)

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
		}).Info("Omics Status Dashboard started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Omics Status Dashboard...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Warn("failed to close postgres connection")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Warn("failed to close redis connection")
	}

	logger.Log.Info("Omics Status Dashboard stopped")
}
