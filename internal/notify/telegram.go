package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender часть *bot.Bot, которая нужна уведомлениям
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier отправляет ментору сообщение в его чат
type TelegramNotifier struct {
	sender MessageSender
	logger *zap.Logger
}

// NewTelegramBot создаёт клиента Bot API без обработки входящих апдейтов
func NewTelegramBot(token string) (*bot.Bot, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

func NewTelegramNotifier(sender MessageSender, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, logger: logger}
}

func (n *TelegramNotifier) BookingConfirmed(ctx context.Context, booking *model.Booking, mentor *model.Mentor) error {
	text := fmt.Sprintf(
		"✅ <b>Новое бронирование</b>\n\n📅 %s, %s\n💬 %s, %s\n💰 %s\n📝 %s",
		formatSessionDate(booking.Date),
		booking.Range,
		modeName(booking.Mode),
		formatDuration(booking.DurationMinutes),
		booking.Price,
		html.EscapeString(booking.Topic),
	)
	return n.send(ctx, booking, mentor, text)
}

func (n *TelegramNotifier) BookingCancelled(ctx context.Context, booking *model.Booking, mentor *model.Mentor) error {
	text := fmt.Sprintf(
		"❌ <b>Бронирование отменено</b>\n\n📅 %s, %s",
		formatSessionDate(booking.Date),
		booking.Range,
	)
	return n.send(ctx, booking, mentor, text)
}

func (n *TelegramNotifier) send(ctx context.Context, booking *model.Booking, mentor *model.Mentor, text string) error {
	if mentor == nil || mentor.TelegramChatID == nil {
		n.logger.Debug("Mentor has no telegram chat, skipping notification",
			zap.Int64("mentor_id", booking.MentorID))
		return nil
	}

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    *mentor.TelegramChatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
