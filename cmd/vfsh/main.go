package main

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/vfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/vfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/vfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/vfs/internal/plugin"
	"github.com/GriffinCanCode/vfs/internal/plugin/filestats"
	"github.com/GriffinCanCode/vfs/internal/shell"
	"github.com/GriffinCanCode/vfs/internal/vfs"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "vfsh:", err)
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	cfg := config.LoadOrDefault()

	flags := pflag.NewFlagSet("vfsh", pflag.ExitOnError)
	flags.StringVarP(&cfg.Disk.Image, "image", "i", cfg.Disk.Image, "disk image to load and save")
	flags.Uint64VarP(&cfg.Disk.Size, "size", "s", cfg.Disk.Size, "disk capacity in bytes, 0 for unlimited")
	flags.BoolVar(&cfg.Disk.AutoLoad, "autoload", cfg.Disk.AutoLoad, "load the image at startup")
	flags.BoolVar(&cfg.Disk.AutoSave, "autosave", cfg.Disk.AutoSave, "save the image on exit")
	flags.StringVarP(&cfg.Shell.Prompt, "prompt", "p", cfg.Shell.Prompt, "prompt prefix")
	flags.StringVar(&cfg.Shell.PluginManifest, "plugins", cfg.Shell.PluginManifest, "plugin manifest (.yaml or .toml) to load")
	flags.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "log level")
	flags.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "development logging")
	if err := flags.Parse(args); err != nil {
		return err
	}

	logger, err := logging.New(logging.FromConfig(cfg.Logging, "stderr"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	fs := vfs.New(cfg.Disk.Size, vfs.WithLogger(logger.Logger), vfs.WithMetrics(metrics))
	if cfg.Disk.AutoLoad {
		if err := fs.LoadFromDisk(cfg.Disk.Image); err != nil {
			if !errors.Is(err, iofs.ErrNotExist) {
				return fmt.Errorf("failed to load image: %w", err)
			}
			logger.Info("No disk image yet, starting empty", zap.String("image", cfg.Disk.Image))
		}
	}

	sh := shell.New(fs,
		shell.WithLogger(logger.Logger),
		shell.WithMetrics(metrics),
		shell.WithPrompt(cfg.Shell.Prompt),
		shell.WithImage(cfg.Disk.Image),
	)
	plugins := plugin.NewManager(sh, plugin.WithLogger(logger.Logger), plugin.WithMetrics(metrics))
	if err := plugins.Register("filestats", filestats.New); err != nil {
		return err
	}
	sh.SetPlugins(plugins)
	if cfg.Shell.PluginManifest != "" {
		if _, err := plugins.LoadManifest(cfg.Shell.PluginManifest); err != nil {
			logger.Warn("Plugin manifest partially loaded", zap.Error(err))
		}
	}

	defer func() {
		var result *multierror.Error
		if err != nil {
			result = multierror.Append(result, err)
		}
		if cfg.Disk.AutoSave {
			if serr := fs.SaveToDisk(cfg.Disk.Image); serr != nil {
				result = multierror.Append(result, serr)
			}
		}
		if cerr := plugins.Close(); cerr != nil {
			result = multierror.Append(result, cerr)
		}
		if cerr := fs.Close(); cerr != nil {
			result = multierror.Append(result, cerr)
		}
		err = result.ErrorOrNil()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A blocked read cannot observe ctx, so the loop runs on its own
	// goroutine. On a signal the shell is halted before the deferred save
	// touches the namespace.
	done := make(chan error, 1)
	go func() { done <- sh.Run(ctx, os.Stdin) }()

	select {
	case err := <-done:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case <-ctx.Done():
		sh.Halt()
		fmt.Fprintln(os.Stdout)
		logger.Info("Interrupted, shutting down")
		return nil
	}
}
