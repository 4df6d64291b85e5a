package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/metrics"
	"github.com/UnknownOlympus/storekeeper/internal/models"
	"gopkg.in/telebot.v4"
)

// handlerTimeout bounds the storage and delivery work one update may trigger.
const handlerTimeout = 30 * time.Second

// Bot contains the bot API instance and other information.
type Bot struct {
	bot     *telebot.Bot
	log     *slog.Logger
	metrics *metrics.Metrics
	lanes   *Lanes
}

// NewBot creates a new bot with the given token. Updates are read synchronously and
// dispatched to per-user lanes, so one user's events are handled in arrival order.
func NewBot(log *slog.Logger, m *metrics.Metrics, token string, poller time.Duration) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:       token,
		Poller:      &telebot.LongPoller{Timeout: poller},
		Synchronous: true,
		OnError: func(err error, _ telebot.Context) {
			log.Error("Telegram bot error", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	return &Bot{
		bot:     bot,
		log:     log,
		metrics: m,
		lanes:   NewLanes(log),
	}, nil
}

// API exposes the underlying client for outbound notifications.
func (b *Bot) API() *telebot.Bot {
	return b.bot
}

// Route registers the dialogue handlers behind the lane middleware.
func (b *Bot) Route(dialogue *Dialogue) {
	b.bot.Use(b.lanes.Middleware)

	b.bot.Handle("/start", func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()
		return dialogue.Start(ctx, newConversation(c, b.metrics), identity(c.Sender()))
	})

	b.bot.Handle(telebot.OnCallback, func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()
		return dialogue.Callback(ctx, newConversation(c, b.metrics), identity(c.Sender()), c.Callback().Data)
	})

	b.bot.Handle(telebot.OnText, func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()
		return dialogue.Text(ctx, newConversation(c, b.metrics), identity(c.Sender()), c.Text())
	})
}

// Start launches the bot to listen for updates. It blocks until Stop.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop stops polling and waits for in-flight updates until ctx is done.
func (b *Bot) Stop(ctx context.Context) error {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
	return b.lanes.Shutdown(ctx)
}

func identity(user *telebot.User) models.Identity {
	return models.Identity{
		TelegramID:   user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Username:     user.Username,
		LanguageCode: user.LanguageCode,
	}
}
