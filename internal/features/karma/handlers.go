// Package karma — handlers.go обрабатывает оценки в ответах на сообщения
// и команды /top, /mystats.
package karma

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ruhich/point-bot/internal/common"
)

// Authorizer решает, может ли пользователь менять карму в чате.
type Authorizer interface {
	IsChatAuthorized(ctx context.Context, userID, chatID int64) bool
}

// NameResolver возвращает отображаемое имя участника чата.
type NameResolver interface {
	ResolveDisplayName(ctx context.Context, chatID, userID int64) string
}

// Handler обрабатывает события кармы.
type Handler struct {
	service  *Service
	authz    Authorizer
	names    NameResolver
	api      *tgbotapi.BotAPI
	topLimit int
}

// NewHandler создаёт обработчик кармы.
func NewHandler(service *Service, authz Authorizer, names NameResolver, api *tgbotapi.BotAPI, topLimit int) *Handler {
	return &Handler{service: service, authz: authz, names: names, api: api, topLimit: topLimit}
}

// HandleReply обрабатывает текст, отправленный ответом на чужое сообщение.
//
// Неавторизованный автор игнорируется молча: отсутствие реакции не выдаёт,
// какие сообщения «считаются» для кармы. Авторизация проверяется здесь,
// до вызова движка — сам движок её не перепроверяет.
func (h *Handler) HandleReply(ctx context.Context, msg *tgbotapi.Message) {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil || msg.From == nil {
		return
	}
	target := msg.ReplyToMessage.From

	if !h.authz.IsChatAuthorized(ctx, msg.From.ID, msg.Chat.ID) {
		return
	}

	adj, err := h.service.ApplyAdjustment(ctx, msg.From.ID, msg.Chat.ID, target.ID, target.IsBot, msg.Text)
	switch {
	case errors.Is(err, common.ErrSelfKarma):
		h.reply(msg, "Нельзя ставить карму самому себе.")
	case errors.Is(err, common.ErrBotTarget):
		// молча
	case err != nil:
		log.WithError(err).Error("Ошибка изменения кармы")
	case adj == nil:
		// обычное сообщение, не оценка
	default:
		h.reply(msg, fmt.Sprintf("Карма пользователя %s изменена. Текущая карма: %d", displayName(target), adj.NewScore))
	}
}

// HandleTop — команда /top. Рейтинг кармы текущего чата за месяц.
func (h *Handler) HandleTop(ctx context.Context, msg *tgbotapi.Message) {
	top, err := h.service.TopScores(ctx, msg.Chat.ID, h.topLimit)
	if err != nil {
		log.WithError(err).Error("Ошибка получения рейтинга")
		h.sendMessage(msg.Chat.ID, "Не удалось получить рейтинг.")
		return
	}
	if len(top) == 0 {
		h.sendMessage(msg.Chat.ID, "Топ еще пуст.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Топ пользователей по карме в этом месяце:\n")
	for i, entry := range top {
		name := h.names.ResolveDisplayName(ctx, msg.Chat.ID, entry.UserID)
		fmt.Fprintf(&sb, "%d. %s: %d\n", i+1, name, entry.Score)
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

// HandleMyStats — команда /mystats. Своя карма в текущем чате.
func (h *Handler) HandleMyStats(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	score, err := h.service.GetScore(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения кармы")
		h.sendMessage(msg.Chat.ID, "Не удалось получить карму.")
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("Твоя карма в этом чате за текущий месяц: %s.", common.FormatScore(score)))
}

func (h *Handler) reply(to *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(to.Chat.ID, text)
	msg.ReplyToMessageID = to.MessageID
	if _, err := h.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", to.Chat.ID).Error("Ошибка отправки ответа")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// displayName собирает имя из данных Telegram-сообщения, без похода в API.
func displayName(u *tgbotapi.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		name = fmt.Sprintf("Пользователь ID:%d", u.ID)
	}
	return name
}
