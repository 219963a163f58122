package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/facturacr/facturacr/internal/config"
	"github.com/facturacr/facturacr/internal/logger"
	"github.com/facturacr/facturacr/internal/storage"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:     "facturacr",
	Short:   "Invoicing and inventory ledger server",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo catalog data into empty collections and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := logger.Setup(cfg.Log); err != nil {
			return err
		}
		log := logger.WithComponent("seed")
		store := storage.Open(cfg.Database, log)
		defer store.Close()
		if err := storage.Seed(cmd.Context(), store); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info().Msg("seeding completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve() error {
	cfg := config.Load()
	if err := logger.Setup(cfg.Log); err != nil {
		return err
	}
	log := logger.WithComponent("server")

	store := storage.Open(cfg.Database, logger.WithComponent("storage"))
	defer store.Close()

	if cfg.App.Seed {
		if err := storage.Seed(context.Background(), store); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	app := NewApp(store, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Bool("dev", cfg.App.Dev).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
		return err
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}
