// Package cli provides the start-up steps shared by every homebudget
// command: logging, .env loading, configuration and shutdown signals.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"homebudget/internal/config"
	"homebudget/internal/log"
)

// SetupLogger builds the application logger at the given level, writing to
// w, and installs it as the slog default.
func SetupLogger(level string, w io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Output:    w,
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads .env files for local development. Missing files are
// ignored; variables already set in the environment win.
func LoadEnvFile(paths ...string) {
	if len(paths) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// LoadAndValidateConfig loads the configuration from path (may be empty) and
// validates it.
func LoadAndValidateConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. Once
// the signal arrives, shutdown is called with a context bounded by timeout.
// The returned channel closes after shutdown has returned.
func GracefulShutdown(parent context.Context, logger *log.Logger, timeout time.Duration, shutdown func(context.Context) error) (context.Context, <-chan struct{}) {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-ctx.Done()
		stop()
		logger.Info("Shutdown signal received", "cause", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if shutdown != nil {
			if err := shutdown(shutdownCtx); err != nil {
				logger.Error("Shutdown error", log.FieldError, err)
				return
			}
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	if logger != nil {
		logger.Error(msg, log.FieldError, err)
	} else {
		slog.Error(msg, log.FieldError, err)
	}
	fmt.Fprintln(os.Stderr, "homebudget:", err)
	os.Exit(1)
}
