package notify

import (
	"context"
	"errors"
	"fmt"
	"freight-order-service/internal/platform/obs"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramAlerter posts back-office alerts to a single Telegram chat.
type TelegramAlerter struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramAlerter authenticates the bot. An empty endpoint uses the public
// Bot API; otherwise it is a format string like tgbotapi.APIEndpoint.
func NewTelegramAlerter(token string, chatID int64, endpoint string) (*TelegramAlerter, error) {
	if token == "" {
		return nil, errors.New("telegram alerter: token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram alerter: chat id is empty")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram alerter: connect: %w", err)
	}
	return &TelegramAlerter{api: api, chatID: chatID}, nil
}

func (a *TelegramAlerter) Alert(ctx context.Context, text string) (err error) {
	defer obs.Time(ctx, "telegram.Alert")(&err)

	if err := ctx.Err(); err != nil {
		return err
	}

	sent, err := a.api.Send(tgbotapi.NewMessage(a.chatID, text))
	if err != nil {
		return fmt.Errorf("telegram alert: send: %w", err)
	}
	obs.FromContext(ctx).Debug("telegram alert sent", zap.Int("message_id", sent.MessageID))
	return nil
}
