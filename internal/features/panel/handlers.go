// Package panel — handlers.go связывает диалог панели с Telegram.
// Меню — inline-клавиатура в личных сообщениях; выбор чата кнопкой
// либо числом, дальше по шагам конечного автомата.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ruhich/point-bot/internal/common"
	"github.com/ruhich/point-bot/internal/features/chats"
	"github.com/ruhich/point-bot/internal/graphs"
)

// Данные callback-кнопок меню. Состояние диалога по ним не восстанавливается —
// они только события нажатия, текущий шаг хранит Session.
const (
	cbAddAdmin    = "panel_add_admin"
	cbRemoveAdmin = "panel_remove_admin"
	cbListAdmins  = "panel_list_admins"
	cbShowGraph   = "panel_show_graph"
	cbResetScores = "panel_reset_scores"
	cbChatPrefix  = "panel_chat:"
)

// NameResolver возвращает отображаемое имя участника чата.
// При ошибке платформы — заглушку, а не ошибку.
type NameResolver interface {
	ResolveDisplayName(ctx context.Context, chatID, userID int64) string
}

// Handler обрабатывает сообщения и callback-и админ-панели.
type Handler struct {
	service *Service
	names   NameResolver
	api     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(service *Service, names NameResolver, api *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, names: names, api: api}
}

// HandleCommand — команда /admin_panel в личных сообщениях.
func (h *Handler) HandleCommand(ctx context.Context, chatID, userID int64) {
	if err := h.service.Open(userID); err != nil {
		// Попытки чужих пользователей сообщаем явно (в отличие от кармы).
		h.sendMessage(chatID, "Доступ запрещен или команда должна быть в личной переписке с ботом.")
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Добавить админа", cbAddAdmin)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Удалить админа", cbRemoveAdmin)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Показать админов чата", cbListAdmins)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Показать график активности", cbShowGraph)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Сбросить карму вручную", cbResetScores)),
	)

	msg := tgbotapi.NewMessage(chatID, "Панель управления главного админа:")
	msg.ReplyMarkup = keyboard
	if _, err := h.api.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки меню панели")
	}
}

// HandleCallback обрабатывает нажатие кнопки меню.
func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.From == nil {
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	op := OpNone
	switch cq.Data {
	case cbAddAdmin:
		op = OpAddAdmin
	case cbRemoveAdmin:
		op = OpRemoveAdmin
	case cbListAdmins:
		op = OpListAdmins
	case cbShowGraph:
		op = OpShowGraph
	case cbResetScores:
		op = OpResetScores
	}

	if op != OpNone {
		h.answerCallback(cq.ID, "")
		list, err := h.service.ChooseOp(ctx, userID, op)
		if err != nil {
			if errors.Is(err, common.ErrNotSuperAdmin) {
				h.answerAlert(cq.ID, "Доступ запрещен.")
				return
			}
			log.WithError(err).Error("Ошибка выбора операции панели")
			h.sendMessage(chatID, "Не удалось получить список чатов.")
			return
		}
		h.promptChatSelection(chatID, list)
		return
	}

	if chatIDStr, ok := strings.CutPrefix(cq.Data, cbChatPrefix); ok {
		h.answerCallback(cq.ID, "")
		selected, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			log.WithField("data", cq.Data).Warn("Повреждённые данные кнопки выбора чата")
			return
		}
		outcome, err := h.service.ChooseChat(ctx, userID, selected)
		h.renderOutcome(ctx, chatID, outcome, err)
		return
	}

	// Неизвестная кнопка — просто гасим "часики".
	h.answerCallback(cq.ID, "")
}

// HandleMessage обрабатывает текстовый ввод в активном диалоге.
// Возвращает true, если сообщение было шагом диалога.
func (h *Handler) HandleMessage(ctx context.Context, chatID, userID int64, text string) bool {
	if !h.service.HasSession(userID) {
		return false
	}
	outcome, err := h.service.SubmitText(ctx, userID, text)
	if outcome == nil && err == nil {
		return false
	}
	h.renderOutcome(ctx, chatID, outcome, err)
	return true
}

// promptChatSelection показывает меню выбора чата из реестра.
// Параллельно всегда принимается прямой ввод ID чата числом —
// на случай чата, которого ещё нет в реестре.
func (h *Handler) promptChatSelection(chatID int64, list []chats.Chat) {
	msg := tgbotapi.NewMessage(chatID, "Выберите чат кнопкой или отправьте его ID числом:")
	if len(list) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(list))
		for _, c := range list {
			label := c.Title
			if label == "" {
				label = strconv.FormatInt(c.ChatID, 10)
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, cbChatPrefix+strconv.FormatInt(c.ChatID, 10)),
			))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	if _, err := h.api.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки меню выбора чата")
	}
}

// renderOutcome превращает результат шага в ответ оператору.
func (h *Handler) renderOutcome(ctx context.Context, chatID int64, outcome *Outcome, err error) {
	switch {
	case errors.Is(err, common.ErrBadInput):
		h.sendMessage(chatID, "Неверный формат. Пожалуйста, введите числовой ID. Начните заново через /admin_panel.")
		return
	case errors.Is(err, common.ErrNoChatSelected):
		h.sendMessage(chatID, "Чат не выбран. Начните заново через /admin_panel.")
		return
	case errors.Is(err, common.ErrNotSuperAdmin):
		h.sendMessage(chatID, "Доступ запрещен.")
		return
	case err != nil:
		log.WithError(err).Error("Ошибка шага админ-панели")
		h.sendMessage(chatID, "Произошла ошибка, попробуйте ещё раз.")
		return
	case outcome == nil:
		return
	}

	switch {
	case outcome.AwaitingUser && outcome.Op == OpAddAdmin:
		h.sendMessage(chatID, fmt.Sprintf("Выбран чат %d. Отправьте ID пользователя, которого хотите сделать админом.", outcome.ChatID))

	case outcome.AwaitingUser && outcome.Op == OpRemoveAdmin:
		h.sendMessage(chatID, fmt.Sprintf("Выбран чат %d. Отправьте ID пользователя, которого хотите удалить из админов.", outcome.ChatID))

	case outcome.Op == OpAddAdmin:
		h.sendMessage(chatID, fmt.Sprintf("Пользователь %d добавлен в админы чата %d.", outcome.TargetUserID, outcome.ChatID))

	case outcome.Op == OpRemoveAdmin:
		h.sendMessage(chatID, fmt.Sprintf("Пользователь %d удален из админов чата %d.", outcome.TargetUserID, outcome.ChatID))

	case outcome.Op == OpListAdmins:
		if len(outcome.Admins) == 0 {
			h.sendMessage(chatID, fmt.Sprintf("В чате %d нет назначенных ботом админов.", outcome.ChatID))
			return
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Админы чата %d:\n", outcome.ChatID)
		for _, adminID := range outcome.Admins {
			name := h.names.ResolveDisplayName(ctx, outcome.ChatID, adminID)
			fmt.Fprintf(&sb, "- %s (ID: %d)\n", name, adminID)
		}
		h.sendMessage(chatID, sb.String())

	case outcome.Op == OpResetScores:
		h.sendMessage(chatID, fmt.Sprintf("Карма в чате %d успешно сброшена вручную!", outcome.ChatID))

	case outcome.Op == OpShowGraph:
		h.sendGraph(chatID, outcome)
	}
}

// sendGraph рендерит и отправляет график активности.
func (h *Handler) sendGraph(chatID int64, outcome *Outcome) {
	png, err := graphs.Generate(outcome.Report, outcome.ChatID, outcome.Year, outcome.Month)
	if err != nil {
		log.WithError(err).Error("Ошибка генерации графика")
		h.sendMessage(chatID, "Не удалось сгенерировать график.")
		return
	}
	if png == nil {
		h.sendMessage(chatID, fmt.Sprintf("Нет данных об активности кармы в чате %d за текущий месяц.", outcome.ChatID))
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "activity_graph.png", Bytes: png})
	if _, err := h.api.Send(photo); err != nil {
		log.WithError(err).Error("Ошибка отправки графика")
	}
}

func (h *Handler) answerCallback(callbackID, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.WithError(err).Debug("Не удалось ответить на callback")
	}
}

func (h *Handler) answerAlert(callbackID, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		log.WithError(err).Debug("Не удалось ответить на callback")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
