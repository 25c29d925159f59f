// Package admins — service.go решает, кому можно менять карму.
// Сервис объединяет платформенную роль (владелец/админ чата в Telegram)
// и собственный флаг назначенного админа из БД.
package admins

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Store — операции хранилища назначенных админов.
type Store interface {
	Add(ctx context.Context, userID, chatID int64) error
	Remove(ctx context.Context, userID, chatID int64) error
	IsAdmin(ctx context.Context, userID, chatID int64) (bool, error)
	List(ctx context.Context, chatID int64) ([]int64, error)
}

// PlatformChecker сообщает, является ли пользователь владельцем
// или администратором чата на стороне Telegram.
type PlatformChecker interface {
	IsPlatformChatAdmin(ctx context.Context, userID, chatID int64) (bool, error)
}

// Service — резолвер авторизации плюс управление назначениями.
type Service struct {
	store        Store
	platform     PlatformChecker
	superAdminID int64
}

// NewService создаёт резолвер. superAdminID задаётся один раз на старте.
func NewService(store Store, platform PlatformChecker, superAdminID int64) *Service {
	return &Service{store: store, platform: platform, superAdminID: superAdminID}
}

// IsSuperAdmin — true только для единственного сконфигурированного ID.
func (s *Service) IsSuperAdmin(userID int64) bool {
	return userID == s.superAdminID
}

// IsChatAuthorized — может ли пользователь менять карму в чате.
// Достаточно любого из двух: платформенная роль или назначение ботом.
//
// Ошибка платформенной проверки трактуется как «не админ» (fail-closed):
// авторизация не должна открываться из-за сетевого сбоя.
func (s *Service) IsChatAuthorized(ctx context.Context, userID, chatID int64) bool {
	platformAdmin, err := s.platform.IsPlatformChatAdmin(ctx, userID, chatID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"chat_id": chatID,
		}).Warn("Платформенная проверка админа не удалась, считаем не-админом")
		platformAdmin = false
	}
	if platformAdmin {
		return true
	}

	delegated, err := s.store.IsAdmin(ctx, userID, chatID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"chat_id": chatID,
		}).Error("Проверка назначенного админа не удалась")
		return false
	}
	return delegated
}

// AddAdmin назначает админа (операция админ-панели).
func (s *Service) AddAdmin(ctx context.Context, userID, chatID int64) error {
	return s.store.Add(ctx, userID, chatID)
}

// RemoveAdmin снимает назначение (операция админ-панели).
func (s *Service) RemoveAdmin(ctx context.Context, userID, chatID int64) error {
	return s.store.Remove(ctx, userID, chatID)
}

// ListAdmins возвращает назначенных админов чата.
func (s *Service) ListAdmins(ctx context.Context, chatID int64) ([]int64, error) {
	return s.store.List(ctx, chatID)
}
