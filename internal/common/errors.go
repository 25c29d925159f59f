// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и решать, что отвечать пользователю (а когда молчать).
package common

import "errors"

// Ошибки кармы
var (
	// ErrSelfKarma — попытка поставить карму самому себе
	ErrSelfKarma = errors.New("нельзя ставить карму самому себе")
	// ErrBotTarget — попытка поставить карму боту
	ErrBotTarget = errors.New("ботам карма не ставится")
)

// Ошибки админ-панели
var (
	// ErrNotSuperAdmin — пользователь не является главным администратором
	ErrNotSuperAdmin = errors.New("доступ только для главного администратора")
	// ErrBadInput — не удалось разобрать введённый числовой ID
	ErrBadInput = errors.New("неверный формат, ожидается числовой ID")
	// ErrNoChatSelected — шаг диалога выполняется без выбранного чата
	ErrNoChatSelected = errors.New("чат не выбран, начните заново")
)
