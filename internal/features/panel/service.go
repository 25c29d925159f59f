// Package panel — service.go содержит конечный автомат диалога.
//
// Idle → AwaitingChat(op) → AwaitingTargetUser(op, chat) → Idle
//
// Панелью управляет только главный администратор; любой другой
// пользователь отклоняется на каждом шаге без изменения состояния.
// Сессия одна на оператора, таймаута нет.
package panel

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ruhich/point-bot/internal/common"
	"github.com/ruhich/point-bot/internal/features/chats"
	"github.com/ruhich/point-bot/internal/features/karma"
)

// Admins — операции над назначенными админами.
type Admins interface {
	IsSuperAdmin(userID int64) bool
	AddAdmin(ctx context.Context, userID, chatID int64) error
	RemoveAdmin(ctx context.Context, userID, chatID int64) error
	ListAdmins(ctx context.Context, chatID int64) ([]int64, error)
}

// Karma — операции кармы, доступные панели.
type Karma interface {
	ResetChatScores(ctx context.Context, chatID int64) error
	MonthlyReport(ctx context.Context, chatID int64, year int, month time.Month) ([]karma.DayActivity, error)
}

// Chats — реестр чатов для меню выбора.
type Chats interface {
	List(ctx context.Context) ([]chats.Chat, error)
}

// Service управляет диалогом админ-панели.
type Service struct {
	admins Admins
	karma  Karma
	chats  Chats
	loc    *time.Location
	now    func() time.Time

	sessions   map[int64]*Session
	sessionsMu sync.RWMutex
}

// NewService создаёт сервис админ-панели.
func NewService(admins Admins, karmaSvc Karma, chatsSvc Chats, loc *time.Location) *Service {
	return &Service{
		admins:   admins,
		karma:    karmaSvc,
		chats:    chatsSvc,
		loc:      loc,
		now:      time.Now,
		sessions: make(map[int64]*Session),
	}
}

// Open начинает работу с панелью: сбрасывает сессию в Idle.
func (s *Service) Open(userID int64) error {
	if !s.admins.IsSuperAdmin(userID) {
		return common.ErrNotSuperAdmin
	}
	s.clearSession(userID)
	return nil
}

// HasSession сообщает, находится ли оператор в активном диалоге.
func (s *Service) HasSession(userID int64) bool {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	sess, ok := s.sessions[userID]
	return ok && sess.Stage != StageIdle
}

// ChooseOp фиксирует выбранную операцию и возвращает список чатов для меню.
func (s *Service) ChooseOp(ctx context.Context, userID int64, op Op) ([]chats.Chat, error) {
	if !s.admins.IsSuperAdmin(userID) {
		return nil, common.ErrNotSuperAdmin
	}
	if op == OpNone {
		return nil, fmt.Errorf("неизвестная операция панели")
	}

	s.setSession(userID, &Session{Stage: StageAwaitingChat, Op: op})

	list, err := s.chats.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("список чатов: %w", err)
	}
	return list, nil
}

// ChooseChat обрабатывает выбор чата. Двухшаговые операции переходят
// к ожиданию ID пользователя, одношаговые выполняются сразу.
//
// ID чата не валидируется на существование: upsert/no-op семантика
// хранилища делает операцию над произвольным ID безопасной.
func (s *Service) ChooseChat(ctx context.Context, userID, chatID int64) (*Outcome, error) {
	if !s.admins.IsSuperAdmin(userID) {
		return nil, common.ErrNotSuperAdmin
	}

	sess := s.getSession(userID)
	if sess == nil || sess.Stage != StageAwaitingChat {
		// Нажатие устаревшей кнопки вне диалога — игнорируем.
		return nil, nil
	}
	op := sess.Op

	switch op {
	case OpAddAdmin, OpRemoveAdmin:
		s.setSession(userID, &Session{Stage: StageAwaitingTargetUser, Op: op, SelectedChatID: chatID})
		return &Outcome{Op: op, ChatID: chatID, AwaitingUser: true}, nil

	case OpListAdmins:
		s.clearSession(userID)
		ids, err := s.admins.ListAdmins(ctx, chatID)
		if err != nil {
			return nil, fmt.Errorf("список админов: %w", err)
		}
		return &Outcome{Op: op, ChatID: chatID, Admins: ids}, nil

	case OpResetScores:
		s.clearSession(userID)
		if err := s.karma.ResetChatScores(ctx, chatID); err != nil {
			return nil, fmt.Errorf("сброс кармы: %w", err)
		}
		return &Outcome{Op: op, ChatID: chatID}, nil

	case OpShowGraph:
		s.clearSession(userID)
		nowLocal := s.now().In(s.loc)
		year, month := nowLocal.Year(), nowLocal.Month()
		report, err := s.karma.MonthlyReport(ctx, chatID, year, month)
		if err != nil {
			return nil, fmt.Errorf("месячный отчёт: %w", err)
		}
		return &Outcome{Op: op, ChatID: chatID, Report: report, Year: year, Month: month}, nil

	default:
		s.clearSession(userID)
		return nil, fmt.Errorf("неизвестная операция панели")
	}
}

// SubmitText обрабатывает текстовый ввод оператора внутри диалога:
// числовой ID чата (альтернатива кнопкам меню) либо ID пользователя.
//
// Ошибка разбора сообщается и СБРАСЫВАЕТ сессию — повтор шага
// на месте не поддерживается, диалог начинается заново.
func (s *Service) SubmitText(ctx context.Context, userID int64, text string) (*Outcome, error) {
	if !s.admins.IsSuperAdmin(userID) {
		return nil, common.ErrNotSuperAdmin
	}

	sess := s.getSession(userID)
	if sess == nil || sess.Stage == StageIdle {
		return nil, nil
	}

	switch sess.Stage {
	case StageAwaitingChat:
		chatID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			s.clearSession(userID)
			return nil, common.ErrBadInput
		}
		return s.ChooseChat(ctx, userID, chatID)

	case StageAwaitingTargetUser:
		// Защита от повреждённой сессии: без выбранного чата шаг невозможен.
		if sess.SelectedChatID == 0 {
			s.clearSession(userID)
			return nil, common.ErrNoChatSelected
		}
		targetID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			s.clearSession(userID)
			return nil, common.ErrBadInput
		}

		op, chatID := sess.Op, sess.SelectedChatID
		s.clearSession(userID)

		switch op {
		case OpAddAdmin:
			if err := s.admins.AddAdmin(ctx, targetID, chatID); err != nil {
				return nil, fmt.Errorf("назначение админа: %w", err)
			}
		case OpRemoveAdmin:
			if err := s.admins.RemoveAdmin(ctx, targetID, chatID); err != nil {
				return nil, fmt.Errorf("снятие админа: %w", err)
			}
		default:
			return nil, fmt.Errorf("операция %d не ожидает ID пользователя", op)
		}
		return &Outcome{Op: op, ChatID: chatID, TargetUserID: targetID}, nil

	default:
		s.clearSession(userID)
		return nil, nil
	}
}

// Session возвращает копию текущей сессии (для тестов и отладки).
func (s *Service) Session(userID int64) Session {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return *sess
	}
	return Session{Stage: StageIdle}
}

func (s *Service) getSession(userID int64) *Session {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return s.sessions[userID]
}

func (s *Service) setSession(userID int64, sess *Session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[userID] = sess
}

func (s *Service) clearSession(userID int64) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, userID)
}
