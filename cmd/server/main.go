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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/config"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/database"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/logger"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/mfapi"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/repository"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/version"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:     "rabbit-invest",
	Short:   "Rabbit Invest mutual fund explorer API",
	Version: version.Version,
	Long: `Rabbit Invest backend.

Serves the fund catalog, comparison and favorites API on top of the public
mfapi.in data. Configuration comes from the environment and an optional .env file.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Print a new PREFERENCE_ENCRYPTION_KEY",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := service.GenerateEmailKey()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path of the .env file to load")
	rootCmd.AddCommand(keygenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Log)

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	cipher, err := service.NewEmailCipher(cfg.Preferences.EncryptionKey)
	if err != nil {
		return err
	}
	if !cipher.Enabled() {
		log.Warn().Msg("PREFERENCE_ENCRYPTION_KEY not set, user email is stored in plain text")
	}

	// Create repositories
	preferenceRepo := repository.NewPreferenceRepository(db)

	gateway := mfapi.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout,
		mfapi.WithRateLimit(cfg.Gateway.RateLimit),
		mfapi.WithLogger(logger.Component(log, "gateway")),
	)

	// Create services
	catalogService := service.NewCatalogService(gateway, logger.Component(log, "catalog"))
	navService := service.NewNAVService(gateway, cfg.Gateway.FanoutLimit, logger.Component(log, "nav"))
	fundService := service.NewFundService(catalogService, navService, cfg.Refresh.Interval, logger.Component(log, "funds"))
	sessionManager := service.NewSessionManager(preferenceRepo, cfg.Limits, cipher, logger.Component(log, "sessions"))
	globalPreferences := service.NewPreferenceService(preferenceRepo, service.GlobalNamespace, cfg.Limits.SearchHistoryLimit, cipher)
	scheduler := service.NewRefreshScheduler(cfg.Refresh.Interval, fundService.RefreshNAV, logger.Component(log, "scheduler"))
	authService := service.NewAuthService(sessionManager, globalPreferences, scheduler, logger.Component(log, "auth"))
	systemService := service.NewSystemService(db, catalogService)

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Auth:      authService,
		Funds:     fundService,
		Sessions:  sessionManager,
		Scheduler: scheduler,
	}, cfg, logger.Component(log, "http"))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.Sessions.IdleTTL > 0 {
		err := scheduler.Every(cfg.Sessions.SweepInterval, "session sweep", func(context.Context) {
			if n := authService.ExpireIdle(cfg.Sessions.IdleTTL); n > 0 {
				log.Info().Int("expired", n).Msg("expired idle sessions")
			}
		})
		if err != nil {
			return err
		}
	}
	scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("version", version.Version).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	return shutdown(server, scheduler, log)
}

func shutdown(server *http.Server, scheduler *service.RefreshScheduler, log zerolog.Logger) error {
	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	scheduler.Stop(ctx)

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}
