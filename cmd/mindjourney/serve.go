package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eringen/mindjourney"
	"github.com/eringen/mindjourney/docstore"
	"github.com/eringen/mindjourney/logger"
	"github.com/eringen/mindjourney/notify"
	"github.com/eringen/mindjourney/sanity"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cobra.Command {
	var staticDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), staticDir)
		},
	}
	cmd.Flags().StringVar(&staticDir, "static", "public", "Directory served under /public/.")
	return cmd
}

func runServe(ctx context.Context, staticDir string) error {
	cfg, err := mindjourney.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	opts := []mindjourney.Option{
		mindjourney.WithLogger(log),
		mindjourney.WithStaticDir(staticDir),
	}

	var app *mindjourney.App
	switch cfg.StoreDriver {
	case mindjourney.DriverSanity:
		client, err := sanity.New(sanity.Config{
			ProjectID:  cfg.SanityProjectID,
			Dataset:    cfg.SanityDataset,
			APIVersion: cfg.SanityAPIVersion,
			Token:      cfg.SanityToken,
			UseCDN:     cfg.SanityUseCDN,
			Timeout:    cfg.SanityTimeout,
		})
		if err != nil {
			return err
		}
		opts = append(opts, mindjourney.WithImageURL(client.ImageURLFunc()))
		app = mindjourney.New(cfg, sanity.NewContentGateway(client), sanity.NewCommentGateway(client), withNotifier(cfg, log, opts)...)
	default:
		store, err := docstore.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, mindjourney.WithImageURL(docstore.ImageURL))
		app = mindjourney.New(cfg, store, store, withNotifier(cfg, log, opts)...)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		_ = app.Close()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// withNotifier adds the RabbitMQ publisher when one is configured. A broker
// that cannot be reached disables notifications instead of the site.
func withNotifier(cfg mindjourney.SiteConfig, log zerolog.Logger, opts []mindjourney.Option) []mindjourney.Option {
	if cfg.RabbitMQURL == "" {
		return opts
	}
	pub, err := notify.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		log.Warn().Err(err).Msg("moderation events disabled")
		return opts
	}
	log.Info().Str("exchange", cfg.RabbitMQExchange).Msg("publishing moderation events")
	return append(opts, mindjourney.WithNotifier(pub))
}
