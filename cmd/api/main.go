package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"go-chatline/cmd/api/router"
	"go-chatline/internal/config"
	cacheAdapter "go-chatline/internal/infrastructure/cache/adapter"
	"go-chatline/internal/infrastructure/database"
	queueAdapter "go-chatline/internal/infrastructure/queue/adapter"
	qport "go-chatline/internal/infrastructure/queue/port"
	"go-chatline/internal/infrastructure/realtime"
	"go-chatline/internal/pkg/assistant/application/task"
	responderAdapter "go-chatline/internal/pkg/assistant/responder/adapter"
	responderPort "go-chatline/internal/pkg/assistant/responder/port"
	repoAdapter "go-chatline/internal/pkg/message/persistence/repository/adapter"
	repository "go-chatline/internal/pkg/message/persistence/repository/port"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn(".env file not found or could not be loaded")
	}

	cfg := config.Load()
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	pgRepo := repoAdapter.NewPgMessageRepository(pool)
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = pgRepo.InitSchema(initCtx)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize schema")
	}

	// Redis-backed pieces are optional: without REDIS_URL the store runs
	// uncached and the generate endpoint is not mounted.
	var repo repository.MessageRepository = pgRepo
	if cache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		logger.WithError(err).Warn("history cache disabled")
	} else {
		defer cache.Close()
		repo = repoAdapter.NewCachedMessageRepository(pgRepo, cache, logger)
	}

	var queueClient qport.Client
	var queueServer qport.Server
	if client, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		logger.WithError(err).Warn("background queue disabled")
	} else {
		defer client.Close()
		queueClient = client
		if srv, err := queueAdapter.NewAsynqServer(logger); err != nil {
			logger.WithError(err).Warn("background worker disabled")
		} else {
			queueServer = srv
			task.RegisterArchiveExchangeTask(srv, repo, logger)
		}
	}

	var rsp responderPort.Responder
	if cfg.ResponderURL != "" {
		if r, err := responderAdapter.NewHTTPResponder(cfg.ResponderURL); err != nil {
			logger.WithError(err).Warn("responder disabled")
		} else {
			rsp = r
		}
	}

	presence := realtime.NewPresence()
	relay := realtime.NewRelay(presence, logger)

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.RegisterRoutes(r, repo, presence, relay, rsp, queueClient, logger)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if queueServer != nil {
		go func() {
			if err := queueServer.Run(workerCtx); err != nil {
				logger.WithError(err).Error("background worker stopped")
			}
		}()
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP shutdown failed")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()

	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	return logger
}
