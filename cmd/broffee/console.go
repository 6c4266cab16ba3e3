package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Lixing-Zhang/broffee-bot/internal/bot"
	"github.com/Lixing-Zhang/broffee-bot/internal/config"
	"github.com/Lixing-Zhang/broffee-bot/pkg/logger"
)

func newConsoleCmd() *cobra.Command {
	var (
		sessionID string
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot from the terminal",
		Long: `Reads one message per line from stdin and prints the bot's reply.
Commands use the same syntax as in Telegram, e.g. "/order espresso 2".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			// Logs go to stderr so replies stay readable
			log := logger.NewWithWriter(cmd.ErrOrStderr(), logLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			log.Info("console session started", "session_id", sessionID)

			return bot.NewConsole(a.dispatcher, cmd.InOrStdin(), cmd.OutOrStdout(), sessionID).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session ID (default: random)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	return cmd
}
