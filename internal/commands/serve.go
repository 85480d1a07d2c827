package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/okra-platform/utilfn/internal/config"
	"github.com/okra-platform/utilfn/internal/runtime"
	"github.com/okra-platform/utilfn/internal/serve"
	"github.com/rs/zerolog"
)

// StartupMessage is logged once the function is reachable
const StartupMessage = "Hello from Functions!"

// newFunctionGateway builds the gateway runServer exposes; tests replace it
var newFunctionGateway = runtime.NewFunctionGateway

// ServeOptions contains options for the serve command
type ServeOptions struct {
	// Port overrides the configured function port when positive
	Port int

	// AdminPort overrides the configured admin port when positive
	AdminPort int

	// Watch reloads the config file on change
	Watch bool
}

// Serve runs the function gateway and admin API until interrupted
func (c *Controller) Serve(ctx context.Context, opts ...ServeOptions) error {
	var options ServeOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	cfg, configPath, err := c.loadConfig()
	if err != nil {
		return err
	}
	if options.Port > 0 {
		cfg.Port = options.Port
	}
	if options.AdminPort > 0 {
		cfg.AdminPort = options.AdminPort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.applyLogLevel(cfg)

	logger := c.logger("serve")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if options.Watch && configPath != "" && cfg.WatchEnabled() {
		watcher, err := config.NewWatcher(configPath, logger, func(updated *config.Config) {
			c.applyLogLevel(updated)
		})
		if err != nil {
			return fmt.Errorf("failed to watch config: %w", err)
		}
		defer watcher.Close()

		go func() {
			if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("config watcher stopped")
			}
		}()
		logger.Info().Str("path", configPath).Msg("watching config for changes")
	}

	gatewayListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
	}

	adminListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.AdminPort))
	if err != nil {
		gatewayListener.Close()
		return fmt.Errorf("failed to listen on admin port %d: %w", cfg.AdminPort, err)
	}

	return runServer(ctx, cfg, gatewayListener, adminListener, logger)
}

// runServer deploys the function and serves both listeners until ctx is done
// or a listener fails. Both listeners are closed on return.
func runServer(ctx context.Context, cfg *config.Config, gatewayListener, adminListener net.Listener, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timeout, err := cfg.Timeout()
	if err != nil {
		gatewayListener.Close()
		adminListener.Close()
		return err
	}

	functionRuntime := runtime.NewFunctionRuntime(logger)
	if err := functionRuntime.Start(ctx); err != nil {
		gatewayListener.Close()
		adminListener.Close()
		return fmt.Errorf("failed to start runtime: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := functionRuntime.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("error shutting down runtime")
		}
	}()

	gateway := newFunctionGateway(logger, timeout)
	adminServer := serve.NewAdminServer(functionRuntime, gateway, logger)

	if _, err := adminServer.Deploy(ctx, cfg.Name, false); err != nil {
		gatewayListener.Close()
		adminListener.Close()
		return fmt.Errorf("failed to deploy function: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	// Start function gateway
	wg.Add(1)
	go func() {
		defer wg.Done()

		gatewayServer := &http.Server{
			Handler: gateway.Handler(),
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			gatewayServer.Shutdown(shutdownCtx)
		}()

		if err := gatewayServer.Serve(gatewayListener); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("function gateway error: %w", err)
		}
	}()

	// Start admin server
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := adminServer.Serve(ctx, adminListener); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("admin server error: %w", err)
		}
	}()

	logger.Info().
		Str("function", cfg.Name).
		Str("addr", gatewayListener.Addr().String()).
		Str("admin_addr", adminListener.Addr().String()).
		Msg(StartupMessage)

	// Wait for shutdown signal or error
	var serveErr error
	select {
	case err := <-errChan:
		logger.Error().Err(err).Msg("server error")
		serveErr = err
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	}
	cancel()

	// Wait for servers to stop
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := gateway.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error shutting down gateway")
	}

	logger.Info().Msg("serve shutdown complete")
	return serveErr
}
