// Package karma — service.go содержит бизнес-логику кармы:
// применение оценок, ежемесячный сброс и месячные агрегаты.
package karma

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ruhich/point-bot/internal/common"
)

// Store — операции хранилища, нужные сервису кармы.
// Интерфейс позволяет тестировать логику без PostgreSQL.
type Store interface {
	GetScore(ctx context.Context, userID, chatID int64) (int64, error)
	AdjustScore(ctx context.Context, userID, chatID, delta int64) error
	TopScores(ctx context.Context, chatID int64, limit int) ([]TopEntry, error)
	ResetChatScores(ctx context.Context, chatID int64) error
	DeleteScore(ctx context.Context, userID, chatID int64) error
	LogActivity(ctx context.Context, chatID, giverID, receiverID, delta int64) error
	MonthlyActivity(ctx context.Context, chatID int64, year int, month time.Month) ([]DayActivity, error)
	ChatMonths(ctx context.Context) ([]ChatMonth, error)
}

// Service управляет системой кармы.
type Service struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// NewService создаёт сервис кармы.
func NewService(store Store, loc *time.Location) *Service {
	return &Service{store: store, loc: loc, now: time.Now}
}

// ApplyAdjustment применяет оценку из ответа на сообщение.
//
// Порядок проверок фиксирован:
//  1. не оценка ("+1"/"-1") → (nil, nil), молча игнорируем;
//  2. цель — бот → common.ErrBotTarget, без мутаций;
//  3. цель — сам автор → common.ErrSelfKarma, без мутаций;
//  4. иначе: изменяем счёт, пишем журнал, читаем новый счёт.
//
// Авторизацию проверяет вызывающий ДО вызова — движок её не перепроверяет.
// Журнал пишется только после успешного изменения счёта; журнал — отчётность,
// не источник истины, поэтому обе записи не обязаны быть одной транзакцией.
func (s *Service) ApplyAdjustment(ctx context.Context, actorID, chatID, targetID int64, targetIsBot bool, text string) (*Adjustment, error) {
	delta := ParseDelta(text)
	if delta == 0 {
		return nil, nil
	}
	if targetIsBot {
		return nil, common.ErrBotTarget
	}
	if targetID == actorID {
		return nil, common.ErrSelfKarma
	}

	if err := s.store.AdjustScore(ctx, targetID, chatID, delta); err != nil {
		return nil, fmt.Errorf("изменение кармы: %w", err)
	}
	if err := s.store.LogActivity(ctx, chatID, actorID, targetID, delta); err != nil {
		return nil, fmt.Errorf("запись журнала: %w", err)
	}

	newScore, err := s.store.GetScore(ctx, targetID, chatID)
	if err != nil {
		return nil, fmt.Errorf("чтение новой кармы: %w", err)
	}

	log.WithFields(log.Fields{
		"chat_id":   chatID,
		"giver_id":  actorID,
		"target_id": targetID,
		"delta":     delta,
		"new_score": newScore,
	}).Info("Карма изменена")

	return &Adjustment{Delta: delta, NewScore: newScore}, nil
}

// GetScore возвращает карму пользователя в чате (0, если записи нет).
func (s *Service) GetScore(ctx context.Context, userID, chatID int64) (int64, error) {
	return s.store.GetScore(ctx, userID, chatID)
}

// TopScores возвращает рейтинг чата.
func (s *Service) TopScores(ctx context.Context, chatID int64, limit int) ([]TopEntry, error) {
	return s.store.TopScores(ctx, chatID, limit)
}

// MonthlyReport возвращает суммарные изменения кармы по дням месяца.
// Пустой месяц — пустой срез, не ошибка.
func (s *Service) MonthlyReport(ctx context.Context, chatID int64, year int, month time.Month) ([]DayActivity, error) {
	return s.store.MonthlyActivity(ctx, chatID, year, month)
}

// ResetChatScores вручную обнуляет карму чата (операция админ-панели).
func (s *Service) ResetChatScores(ctx context.Context, chatID int64) error {
	return s.store.ResetChatScores(ctx, chatID)
}

// RemoveMember удаляет запись кармы окончательно ушедшего участника.
func (s *Service) RemoveMember(ctx context.Context, userID, chatID int64) error {
	return s.store.DeleteScore(ctx, userID, chatID)
}

// ResetMonthlyIfNeeded проверяет каждый чат и обнуляет карму тем, чей месяц
// последней активности отличается от текущего. Запускается раз в сутки.
//
// Идемпотентность в пределах месяца: метку ставит только свежий AdjustScore,
// сброс её не трогает, поэтому повторный прогон либо ничего не находит, либо
// повторно обнуляет уже нулевой счёт — что безвредно.
func (s *Service) ResetMonthlyIfNeeded(ctx context.Context) error {
	currentMonth := common.MonthKey(s.now().In(s.loc))

	chats, err := s.store.ChatMonths(ctx)
	if err != nil {
		return fmt.Errorf("чтение месяцев активности: %w", err)
	}

	for _, cm := range chats {
		if cm.Month == "" || cm.Month == currentMonth {
			continue
		}
		if err := s.store.ResetChatScores(ctx, cm.ChatID); err != nil {
			log.WithError(err).WithField("chat_id", cm.ChatID).Error("Ошибка месячного сброса кармы")
			continue
		}
		log.WithFields(log.Fields{
			"chat_id":    cm.ChatID,
			"last_month": cm.Month,
			"new_month":  currentMonth,
		}).Info("Карма чата сброшена на границе месяца")
	}

	return nil
}
