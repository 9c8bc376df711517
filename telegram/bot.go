package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pasarfleet/p-ui/logger"
	"github.com/pasarfleet/p-ui/notification"
	"github.com/pasarfleet/p-ui/util/common"
)

// StatusProvider renders the fleet summary for the /status command.
type StatusProvider func() string

// The sink can run from the notification worker while Start is still
// setting up, so all package state lives behind one mutex. Each Start
// replaces the admin set wholesale; a restart with an edited config
// never keeps stale ids.
var (
	mu         sync.RWMutex
	adminIDs   = make(map[int64]bool)
	status     StatusProvider
	currentBot *bot.Bot
)

func configure(config *Config, statusProvider StatusProvider) {
	ids := make(map[int64]bool, len(config.AdminUserIDs))
	for _, id := range config.AdminUserIDs {
		ids[id] = true
	}

	mu.Lock()
	defer mu.Unlock()
	adminIDs = ids
	status = statusProvider
}

// Start initializes and starts the Telegram bot.
func Start(ctx context.Context, config *Config, statusProvider StatusProvider) {
	if !config.Enabled || config.BotToken == "" {
		logger.Info("Telegram bot is disabled or token is not configured.")
		return
	}

	configure(config, statusProvider)

	opts := []bot.Option{
		bot.WithDefaultHandler(handler),
	}

	b, err := bot.New(config.BotToken, opts...)
	if err != nil {
		logger.Error("Error creating Telegram bot: ", err)
		return
	}

	mu.Lock()
	currentBot = b
	mu.Unlock()

	logger.Info("Telegram bot started.")
	b.Start(ctx)
}

func Stop() {
	mu.Lock()
	b := currentBot
	currentBot = nil
	mu.Unlock()

	if b != nil {
		b.Close(context.Background())
	}
}

func handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	userID := update.Message.From.ID
	if !isAdmin(userID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "You are not authorized to use this bot.",
		})
		return
	}

	command := update.Message.Text
	if i := strings.Index(command, " "); i > 0 {
		command = command[:i]
	}

	switch command {
	case "/start", "/help":
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Available commands:\n/status",
		})
	case "/status":
		mu.RLock()
		provider := status
		mu.RUnlock()

		text := "no status provider configured"
		if provider != nil {
			text = provider()
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   text,
		})
	}
}

func isAdmin(userID int64) bool {
	mu.RLock()
	defer mu.RUnlock()
	return adminIDs[userID]
}

// Sink delivers fleet notification events to the admin chats. It is
// registered with the notifier only while the bot runs.
type Sink struct {
}

func (s *Sink) Send(event notification.Event) {
	mu.RLock()
	b := currentBot
	ids := make([]int64, 0, len(adminIDs))
	for id := range adminIDs {
		ids = append(ids, id)
	}
	mu.RUnlock()

	if b == nil {
		return
	}

	text := formatEvent(event)
	if text == "" {
		return
	}

	ctx := context.Background()
	for _, adminID := range ids {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: adminID,
			Text:   text,
		})
		if err != nil {
			logger.Warning("telegram send failed: ", err)
		}
	}
}

func formatEvent(event notification.Event) string {
	switch event.Kind {
	case notification.KindNodeConnected:
		return fmt.Sprintf("✅ Node \"%s\" connected\nNode: v%s, Core: v%s",
			event.NodeName, event.NodeVersion, event.CoreVersion)
	case notification.KindNodeError:
		return fmt.Sprintf("🚨 Node \"%s\" error:\n%s", event.NodeName, event.Message)
	case notification.KindNodeCreated:
		return fmt.Sprintf("➕ Node \"%s\" added by %s", event.NodeName, event.By)
	case notification.KindNodeModified:
		return fmt.Sprintf("✏️ Node \"%s\" modified by %s", event.NodeName, event.By)
	case notification.KindNodeRemoved:
		return fmt.Sprintf("🗑 Node \"%s\" removed by %s", event.NodeName, event.By)
	case notification.KindNodeUsageReset:
		return fmt.Sprintf("♻️ Node \"%s\" usage reset by %s\nOld usage: ↑%s ↓%s",
			event.NodeName, event.By,
			common.FormatTraffic(int64(event.OldUplink)),
			common.FormatTraffic(int64(event.OldDownlink)))
	default:
		return ""
	}
}
