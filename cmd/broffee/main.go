package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "broffee",
		Short: "Broffee Shop ordering bot",
		Long: `broffee is a chat bot for the Broffee coffee shop.

It shows the menu, keeps a cart per conversation, and takes dine-in,
takeout and delivery requests. Run "serve" to answer Telegram chats and
the HTTP API, or "console" to chat from the terminal.

Configuration comes from the environment (and an optional .env file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newConsoleCmd())
	return root
}
