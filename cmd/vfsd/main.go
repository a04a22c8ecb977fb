package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/vfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/vfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/vfs/internal/infrastructure/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.LoadOrDefault()

	pflag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	pflag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Listen address")
	pflag.StringVar(&cfg.Disk.Image, "image", cfg.Disk.Image, "Disk image to serve")
	pflag.Uint64Var(&cfg.Disk.Size, "size", cfg.Disk.Size, "Disk capacity in bytes, 0 for unlimited")
	pflag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development mode")
	pflag.Parse()

	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		var err error
		logger, err = logging.New(logging.FromConfig(cfg.Logging, "stdout"))
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
	}
	defer func() { _ = logger.Sync() }()

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	case err := <-errChan:
		logger.Fatal("Server error", zap.Error(err))
	}
}
