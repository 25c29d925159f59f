// Package bot содержит главный модуль бота — запуск polling,
// маршрутизацию апдейтов и остановку.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ruhich/point-bot/internal/bot/middleware"
	"github.com/ruhich/point-bot/internal/config"
	"github.com/ruhich/point-bot/internal/features/chats"
	"github.com/ruhich/point-bot/internal/features/karma"
	"github.com/ruhich/point-bot/internal/features/panel"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	rateLimiter *middleware.RateLimiter

	karmaHandler *karma.Handler
	panelHandler *panel.Handler

	karmaService *karma.Service
	chatsService *chats.Service

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	karmaService *karma.Service,
	karmaHandler *karma.Handler,
	chatsService *chats.Service,
	panelHandler *panel.Handler,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:          api,
		cfg:          cfg,
		rateLimiter:  middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		karmaHandler: karmaHandler,
		panelHandler: panelHandler,
		karmaService: karmaService,
		chatsService: chatsService,
		inflight:     make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds
	// chat_member нужен, чтобы узнавать об окончательном уходе участников.
	u.AllowedUpdates = []string{"message", "callback_query", "chat_member"}

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.ChatMember != nil {
		b.handleMembershipChange(ctx, update.ChatMember)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

// handleCallback — кнопки меню админ-панели (только в личке).
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || !cq.Message.Chat.IsPrivate() {
		return
	}
	b.panelHandler.HandleCallback(ctx, cq)
}

// handleMembershipChange удаляет карму окончательно ушедшего участника.
// Записи журнала активности остаются: осиротевшие ссылки агрегации не ломают.
func (b *Bot) handleMembershipChange(ctx context.Context, cm *tgbotapi.ChatMemberUpdated) {
	status := cm.NewChatMember.Status
	if status != "left" && status != "kicked" {
		return
	}
	userID := cm.NewChatMember.User.ID
	if err := b.karmaService.RemoveMember(ctx, userID, cm.Chat.ID); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"chat_id": cm.Chat.ID,
		}).Warn("Не удалось удалить карму ушедшего участника")
		return
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"chat_id": cm.Chat.ID,
		"status":  status,
	}).Info("Участник покинул чат, карма удалена")
}

// handleMessage маршрутизирует обычное сообщение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Окончательный уход виден и как событие в самом сообщении.
	if msg.LeftChatMember != nil && msg.Chat != nil {
		if err := b.karmaService.RemoveMember(ctx, msg.LeftChatMember.ID, msg.Chat.ID); err != nil {
			log.WithError(err).Warn("Не удалось удалить карму ушедшего участника")
		}
		return
	}

	if msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return
	}

	middleware.LogMessage(msg)

	if !b.rateLimiter.Allow(msg.From.ID) {
		log.WithField("user_id", msg.From.ID).Debug("rate limited")
		return
	}

	switch {
	case msg.Chat.IsGroup() || msg.Chat.IsSuperGroup():
		b.handleGroupMessage(ctx, msg)
	case msg.Chat.IsPrivate():
		b.handlePrivateMessage(ctx, msg)
	}
}

// handleGroupMessage — сообщения в групповых чатах: команды и оценки.
func (b *Bot) handleGroupMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Первое событие из чата регистрирует его (first-write-wins).
	b.chatsService.Register(ctx, msg.Chat.ID, msg.Chat.Title, msg.Chat.Type)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.sendMessage(msg.Chat.ID, "Привет! Чтобы я начал работать, администратор чата должен назначить мне админов через личное сообщение со мной.")
		case "top":
			b.karmaHandler.HandleTop(ctx, msg)
		case "mystats":
			b.karmaHandler.HandleMyStats(ctx, msg)
		case "admin_panel":
			b.sendMessage(msg.Chat.ID, "Доступ запрещен или команда должна быть в личной переписке с ботом.")
		}
		return
	}

	if msg.ReplyToMessage != nil {
		b.karmaHandler.HandleReply(ctx, msg)
	}
}

// handlePrivateMessage — личка: приветствие, панель и шаги её диалога.
func (b *Bot) handlePrivateMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.sendMessage(msg.Chat.ID, "Привет! Я бот для управления кармой в чатах. Добавь меня в группу и назначь админов для работы.")
			if msg.From.ID == b.cfg.SuperAdminID {
				b.sendMessage(msg.Chat.ID,
					"Ты Главный Администратор! Вот твоя панель управления:\n"+
						"/admin_panel - Вывести панель управления главного админа.")
			}
		case "admin_panel":
			b.panelHandler.HandleCommand(ctx, msg.Chat.ID, msg.From.ID)
		case "top", "mystats":
			b.sendMessage(msg.Chat.ID, "Эту команду нужно использовать в групповом чате.")
		}
		return
	}

	// Не команда — возможно, шаг активного диалога панели.
	b.panelHandler.HandleMessage(ctx, msg.Chat.ID, msg.From.ID, msg.Text)
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
