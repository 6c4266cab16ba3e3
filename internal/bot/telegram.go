package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Lixing-Zhang/broffee-bot/internal/models"
	"github.com/Lixing-Zhang/broffee-bot/internal/service"
)

// BotAPI is the part of the Telegram client the transport uses
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	StopReceivingUpdates()
}

// Telegram long-polls the Bot API and answers each message through the dispatcher.
// Updates are handled one at a time so replies keep the order of the chat.
type Telegram struct {
	api         BotAPI
	username    string
	dispatcher  *Dispatcher
	log         *slog.Logger
	pollTimeout int
}

// NewTelegramBotAPI authenticates against Telegram with the bot token
func NewTelegramBotAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate telegram bot: %w", err)
	}
	api.Debug = debug
	return api, nil
}

// NewTelegram creates a Telegram transport. username is the bot's own
// username; group commands addressed to any other bot ("/order@OtherBot") are ignored.
func NewTelegram(api BotAPI, username string, dispatcher *Dispatcher, log *slog.Logger, pollTimeout int) *Telegram {
	return &Telegram{
		api:         api,
		username:    username,
		dispatcher:  dispatcher,
		log:         log,
		pollTimeout: pollTimeout,
	}
}

// Run polls for updates until ctx is cancelled or the update channel closes
func (t *Telegram) Run(ctx context.Context) error {
	if err := t.registerCommands(); err != nil {
		t.log.Warn("failed to register bot commands", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.api.GetUpdatesChan(u)

	t.log.Info("telegram polling started", "poll_timeout", t.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.log.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}

	cmd, ok := commandFromMessage(msg, t.username)
	if !ok {
		t.log.Debug("ignoring command for another bot", "chat_id", msg.Chat.ID, "command", msg.CommandWithAt())
		return
	}

	reply := t.dispatcher.Handle(ctx, cmd)

	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	if _, err := t.api.Send(out); err != nil {
		t.log.Error("failed to send reply",
			"chat_id", msg.Chat.ID,
			"update_id", update.UpdateID,
			"error", err,
		)
	}
}

// registerCommands publishes the command list shown in Telegram's menu button
func (t *Telegram) registerCommands() error {
	commands := []tgbotapi.BotCommand{{Command: "start", Description: "Welcome message and help"}}
	for _, c := range service.Commands {
		commands = append(commands, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}

	_, err := t.api.Request(tgbotapi.NewSetMyCommands(commands...))
	return err
}

// commandFromMessage keys the session by chat so every conversation has its own cart.
// It reports false for a command addressed to a bot other than username.
func commandFromMessage(msg *tgbotapi.Message, username string) (models.Command, bool) {
	sessionID := strconv.FormatInt(msg.Chat.ID, 10)

	if !msg.IsCommand() {
		return models.Command{SessionID: sessionID, Text: msg.Text}, true
	}

	_, target, addressed := strings.Cut(msg.CommandWithAt(), "@")
	if addressed && username != "" && !strings.EqualFold(target, username) {
		return models.Command{}, false
	}

	return models.Command{
		SessionID: sessionID,
		Name:      strings.ToLower(msg.Command()),
		Args:      strings.Fields(msg.CommandArguments()),
		Text:      msg.Text,
	}, true
}
