package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/broffee-bot/internal/service"
)

// fakeBotAPI feeds updates from a channel and records what the bot sends
type fakeBotAPI struct {
	updates chan tgbotapi.Update
	sent    chan tgbotapi.MessageConfig

	mu         sync.Mutex
	requests   []tgbotapi.Chattable
	stopped    bool
	sendErr    error
	requestErr error
	gotConfig  tgbotapi.UpdateConfig
}

func newFakeBotAPI() *fakeBotAPI {
	return &fakeBotAPI{
		updates: make(chan tgbotapi.Update),
		sent:    make(chan tgbotapi.MessageConfig, 16),
	}
}

func (f *fakeBotAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.mu.Lock()
	f.gotConfig = config
	f.mu.Unlock()
	return f.updates
}

func (f *fakeBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent <- msg
	}
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: f.requestErr == nil}, f.requestErr
}

func (f *fakeBotAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func commandUpdate(id int, chatID int64, text string, commandLen int) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			MessageID: id,
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: commandLen}},
		},
	}
}

func textUpdate(id int, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			MessageID: id,
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
		},
	}
}

func receive(t *testing.T, sent <-chan tgbotapi.MessageConfig) tgbotapi.MessageConfig {
	t.Helper()
	select {
	case msg := <-sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
		return tgbotapi.MessageConfig{}
	}
}

func startTelegram(t *testing.T, api *fakeBotAPI) (context.CancelFunc, <-chan error) {
	t.Helper()
	tg := NewTelegram(api, "BroffeeBot", newTestDispatcher(), discardLogger(), 30)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tg.Run(ctx) }()
	return cancel, done
}

func TestTelegram_RepliesPerChat(t *testing.T) {
	api := newFakeBotAPI()
	cancel, done := startTelegram(t, api)

	api.updates <- commandUpdate(1, 100, "/order espresso 2", 6)
	msg := receive(t, api.sent)
	assert.Equal(t, int64(100), msg.ChatID)
	assert.Equal(t, "2 espresso(s) added to your cart!", msg.Text)

	api.updates <- commandUpdate(2, 200, "/cart", 5)
	msg = receive(t, api.sent)
	assert.Equal(t, int64(200), msg.ChatID)
	assert.Equal(t, service.EmptyCartMessage, msg.Text, "chats must not share a cart")

	api.updates <- commandUpdate(3, 100, "/cart", 5)
	msg = receive(t, api.sent)
	assert.Contains(t, msg.Text, "Espresso - 2 - $4.00")

	api.updates <- textUpdate(4, 100, "hi!")
	msg = receive(t, api.sent)
	assert.Equal(t, service.FallbackMessage, msg.Text)

	cancel()
	require.NoError(t, <-done)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
	assert.Equal(t, 30, api.gotConfig.Timeout)
}

func TestTelegram_RegistersCommands(t *testing.T) {
	api := newFakeBotAPI()
	cancel, done := startTelegram(t, api)

	// the first update is only handled once registration has run
	api.updates <- commandUpdate(1, 1, "/takeout", 8)
	receive(t, api.sent)
	cancel()
	require.NoError(t, <-done)

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.requests, 1)
	cfg, ok := api.requests[0].(tgbotapi.SetMyCommandsConfig)
	require.True(t, ok)
	require.Len(t, cfg.Commands, len(service.Commands)+1)
	assert.Equal(t, "start", cfg.Commands[0].Command)
	assert.Equal(t, "order", cfg.Commands[2].Command)
}

func TestTelegram_KeepsServingAfterFailures(t *testing.T) {
	api := newFakeBotAPI()
	api.sendErr = errors.New("network down")
	api.requestErr = errors.New("forbidden")
	cancel, done := startTelegram(t, api)

	api.updates <- commandUpdate(1, 1, "/dinein", 7)
	receive(t, api.sent)

	// non-text messages are ignored
	api.updates <- tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}}
	api.updates <- tgbotapi.Update{UpdateID: 3}

	api.updates <- commandUpdate(4, 1, "/order tea x", 6)
	msg := receive(t, api.sent)
	assert.Equal(t, MsgParseQuantity, msg.Text)

	cancel()
	require.NoError(t, <-done)
}

func TestTelegram_StopsWhenUpdatesClose(t *testing.T) {
	api := newFakeBotAPI()
	cancel, done := startTelegram(t, api)
	defer cancel()

	close(api.updates)
	require.NoError(t, <-done)
}

func TestTelegram_IgnoresCommandsForOtherBots(t *testing.T) {
	api := newFakeBotAPI()
	cancel, done := startTelegram(t, api)

	api.updates <- commandUpdate(1, -1001, "/order@OtherBot latte 1", 15)
	api.updates <- commandUpdate(2, -1001, "/cart@broffeebot", 16)

	// updates are handled in order, so the first reply belongs to /cart
	msg := receive(t, api.sent)
	assert.Equal(t, service.EmptyCartMessage, msg.Text)

	cancel()
	require.NoError(t, <-done)
}

func TestCommandFromMessage(t *testing.T) {
	cmd, ok := commandFromMessage(commandUpdate(1, -1001, "/ORDER@BroffeeBot Latte  3", 17).Message, "BroffeeBot")
	require.True(t, ok)
	assert.Equal(t, "-1001", cmd.SessionID)
	assert.Equal(t, "order", cmd.Name)
	assert.Equal(t, []string{"Latte", "3"}, cmd.Args)

	cmd, ok = commandFromMessage(commandUpdate(2, 7, "/menu", 5).Message, "BroffeeBot")
	require.True(t, ok)
	assert.Equal(t, "menu", cmd.Name)

	_, ok = commandFromMessage(commandUpdate(3, -1001, "/order@OtherBot latte 1", 15).Message, "BroffeeBot")
	assert.False(t, ok)

	cmd, ok = commandFromMessage(textUpdate(4, 7, "hello").Message, "BroffeeBot")
	require.True(t, ok)
	assert.False(t, cmd.IsCommand())
	assert.Equal(t, "hello", cmd.Text)
}
