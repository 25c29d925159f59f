// Package bot — platform.go оборачивает вызовы Telegram API, которые
// нужны другим модулям: проверку платформенной роли и имена участников.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// PlatformClient отвечает на вопросы о участниках чатов через Telegram API.
type PlatformClient struct {
	api *tgbotapi.BotAPI
}

// NewPlatformClient создаёт клиент платформенных проверок.
func NewPlatformClient(api *tgbotapi.BotAPI) *PlatformClient {
	return &PlatformClient{api: api}
}

// IsPlatformChatAdmin — является ли пользователь владельцем или
// администратором чата на стороне Telegram. Ошибка возвращается
// вызывающему: резолвер авторизации трактует её как отказ.
func (c *PlatformClient) IsPlatformChatAdmin(ctx context.Context, userID, chatID int64) (bool, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("GetChatMember (user=%d chat=%d): %w", userID, chatID, err)
	}
	return member.Status == "creator" || member.Status == "administrator", nil
}

// ResolveDisplayName возвращает имя участника чата.
// При любой ошибке — заглушку с ID: отчёты не должны падать из-за того,
// что пользователь вышел из чата или API недоступен.
func (c *PlatformClient) ResolveDisplayName(ctx context.Context, chatID, userID int64) string {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"chat_id": chatID,
			"user_id": userID,
		}).Debug("Не удалось получить имя участника")
		return fmt.Sprintf("Пользователь ID:%d", userID)
	}

	name := member.User.FirstName
	if member.User.LastName != "" {
		name += " " + member.User.LastName
	}
	if name == "" {
		name = fmt.Sprintf("Пользователь ID:%d", userID)
	}
	return name
}
