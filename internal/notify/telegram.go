package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/terraincognita07/pilltrack/internal/config"
	"github.com/terraincognita07/pilltrack/internal/services"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramDispatcher posts reminders to a single operator chat.
type TelegramDispatcher struct {
	api      telegramSender
	chatID   int64
	branding Branding
}

func NewTelegramDispatcher(settings config.TelegramConfig, branding Branding) (*TelegramDispatcher, error) {
	api, err := tgbotapi.NewBotAPI(settings.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramDispatcher{api: api, chatID: settings.ChatID, branding: branding}, nil
}

func (dispatcher *TelegramDispatcher) SendPillReminder(ctx context.Context, reminder services.PillReminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := tgbotapi.NewMessage(dispatcher.chatID, renderReminderText(dispatcher.branding, reminder))
	message.DisableWebPagePreview = true
	if _, err := dispatcher.api.Send(message); err != nil {
		return fmt.Errorf("telegram reminder: %w", err)
	}
	return nil
}
