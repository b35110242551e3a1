package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mossy-p/rooms/config"
	"github.com/mossy-p/rooms/internal/handlers"
	"github.com/mossy-p/rooms/internal/redis"
	"github.com/mossy-p/rooms/internal/registry"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlag("port", cmd.Flags().Lookup("port")); err != nil {
				return err
			}
			if err := v.BindPFlag("log_level", cmd.Flags().Lookup("log-level")); err != nil {
				return err
			}

			cfg, err := config.LoadFrom(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
	cmd.Flags().String("log-level", "", "Log level (overrides LOG_LEVEL)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := setupLogging(cfg.LogLevel, cfg.IsProduction())

	var opts []registry.Option
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		mirror := redis.NewMirror(client, cfg.Redis.TTL, logger)
		defer mirror.Close()
		opts = append(opts, registry.WithListener(mirror))

		logger.Info().Str("host", cfg.Redis.Host).Str("port", cfg.Redis.Port).Msg("redis mirror enabled")
	}

	reg := registry.New(opts...)
	hub := handlers.NewHub(logger)
	h := handlers.New(reg, hub, logger, cfg.SendBuffer)

	router := handlers.NewRouter(handlers.RouterConfig{
		Handler:        h,
		AllowedOrigins: cfg.AllowedOrigins,
		Release:        cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("environment", cfg.Environment).Msg("rooms server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	logger.Info().Msg("server exited gracefully")
	return nil
}
