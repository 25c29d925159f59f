// Package chats — service.go содержит логику реестра чатов.
package chats

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Store — операции хранилища реестра чатов.
type Store interface {
	Register(ctx context.Context, chatID int64, title, chatType string) error
	List(ctx context.Context) ([]Chat, error)
}

// Service управляет реестром чатов.
type Service struct {
	store Store
}

// NewService создаёт сервис реестра чатов.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register регистрирует чат при первом событии из него.
// Ошибку логируем, но не роняем обработку сообщения: регистрация
// вспомогательная, карма работает и без неё.
func (s *Service) Register(ctx context.Context, chatID int64, title, chatType string) {
	if err := s.store.Register(ctx, chatID, title, chatType); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Не удалось зарегистрировать чат")
	}
}

// List возвращает зарегистрированные чаты (для меню админ-панели).
func (s *Service) List(ctx context.Context) ([]Chat, error) {
	return s.store.List(ctx)
}
