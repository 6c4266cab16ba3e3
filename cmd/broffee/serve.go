package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Lixing-Zhang/broffee-bot/internal/bot"
	"github.com/Lixing-Zhang/broffee-bot/internal/config"
	"github.com/Lixing-Zhang/broffee-bot/internal/handlers"
	"github.com/Lixing-Zhang/broffee-bot/internal/service"
	"github.com/Lixing-Zhang/broffee-bot/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Answer Telegram chats and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateTelegram(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.Server.Enabled && !cfg.Telegram.Enabled {
		return errors.New("invalid configuration: both HTTP_ENABLED and TELEGRAM_ENABLED are off")
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting broffee bot",
		"http_enabled", cfg.Server.Enabled,
		"telegram_enabled", cfg.Telegram.Enabled,
		"cart_store", cfg.Store.Backend,
		"log_level", cfg.LogLevel,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to close resources", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Server.Enabled {
		srv := newHTTPServer(cfg, a, log)

		g.Go(func() error {
			log.Info("server listening", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server failed: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			log.Info("shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			log.Info("server stopped gracefully")
			return nil
		})
	}

	if cfg.Telegram.Enabled {
		api, err := bot.NewTelegramBotAPI(cfg.Telegram.Token, cfg.Telegram.Debug)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		log.Info("telegram bot authorized", "username", api.Self.UserName)

		tg := bot.NewTelegram(api, api.Self.UserName, a.dispatcher, log, cfg.Telegram.PollTimeout)
		g.Go(func() error {
			return tg.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("bot stopped with error", "error", err)
		return err
	}

	log.Info("bot stopped")
	return nil
}

func newHTTPServer(cfg *config.Config, a *app, log *slog.Logger) *http.Server {
	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:     cfg.Auth,
		Health:   handlers.NewHealthHandler(log, a.carts),
		Menu:     handlers.NewMenuHandler(service.NewMenuService(a.menu), log),
		Sessions: handlers.NewSessionHandler(a.dispatcher, a.orders, log),
		Logger:   log,
	})

	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
}
