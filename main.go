package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	qhttp "grocerysales/http"
	"grocerysales/inference"
	"grocerysales/logging"
	"grocerysales/ml"
	"grocerysales/monitoring"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Look for config in root even if run from cmd/
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		*configPath = filepath.Join("..", filepath.Base(*configPath))
	}

	// 1. Load config
	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	logger, closeLog, err := logging.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Load the model once
	metrics := monitoring.NewMetricsCollector()
	adapter := openAdapter(config, logger)
	if config.ML.Watch && adapter.Ready() {
		err := ml.WatchArtifact(ctx, config.ML.ModelPath, logger, func(e fsnotify.Event) {
			metrics.IncrCounter(monitoring.MetricArtifactChanges, 1, map[string]string{"op": e.Op.String()})
		})
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		}
	}

	// 4. Start HTTP server
	server, err := qhttp.NewServer(config.serverConfig(), adapter, metrics, logger)
	if err != nil {
		logger.Fatal("failed to build http server", zap.Error(err))
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 5. Handle graceful shutdown
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting", zap.Duration("uptime", metrics.GetUptime()))
}

func openAdapter(config *Config, logger *zap.Logger) *inference.Adapter {
	adapter, err := inference.Open(config.ML.ModelType, config.ML.ModelPath, logger)
	if err == nil {
		return adapter
	}
	if config.ML.Required {
		logger.Fatal("failed to load model artifact",
			zap.String("path", config.ML.ModelPath), zap.Error(err))
	}
	logger.Error("model artifact unavailable, serving degraded",
		zap.String("path", config.ML.ModelPath), zap.Error(err))
	return inference.Unavailable(err, logger)
}
