package notifier

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/telebot.v4"
)

// Telegram sends alerts to a single chat.
type Telegram struct {
	log    *slog.Logger
	bot    *telebot.Bot
	chatID int64
}

// NewTelegram authorizes the bot and returns the notifier.
func NewTelegram(log *slog.Logger, token string, chatID int64, poller time.Duration) (*Telegram, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	return &Telegram{log: log, bot: bot, chatID: chatID}, nil
}

// Notify sends the alert. A delivery failure is logged and dropped.
func (t *Telegram) Notify(title, message string) {
	if _, err := t.bot.Send(telebot.ChatID(t.chatID), fmt.Sprintf("%s\n\n%s", title, message)); err != nil {
		t.log.Error("failed to deliver notification", "error", err)
	}
}
