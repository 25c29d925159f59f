// Package panel реализует диалог админ-панели главного администратора.
// models.go описывает типизированное состояние диалога.
//
// Состояние — явный тегированный тип, а не строки callback-данных:
// ввод, не соответствующий текущему шагу, отбрасывается, а не
// угадывается по префиксу.
package panel

import (
	"time"

	"github.com/ruhich/point-bot/internal/features/karma"
)

// Op — операция админ-панели.
type Op int

const (
	OpNone Op = iota
	OpAddAdmin
	OpRemoveAdmin
	OpListAdmins
	OpShowGraph
	OpResetScores
)

// Stage — шаг диалога.
type Stage int

const (
	// StageIdle — диалог не начат либо завершён.
	StageIdle Stage = iota
	// StageAwaitingChat — выбрана операция, ждём выбор чата.
	StageAwaitingChat
	// StageAwaitingTargetUser — выбран чат, ждём числовой ID пользователя.
	// Только для OpAddAdmin и OpRemoveAdmin.
	StageAwaitingTargetUser
)

// Session — состояние диалога одного оператора.
// Через двухшаговый путь переносится ровно одно значение: выбранный чат.
type Session struct {
	Stage          Stage
	Op             Op
	SelectedChatID int64
}

// Outcome — результат выполненного шага диалога, для отрисовки ответа.
type Outcome struct {
	Op     Op
	ChatID int64

	// AwaitingUser — операция двухшаговая, следующий ввод: ID пользователя.
	AwaitingUser bool

	// TargetUserID заполнен для завершённых OpAddAdmin/OpRemoveAdmin.
	TargetUserID int64

	// Admins заполнен для OpListAdmins.
	Admins []int64

	// Report/Year/Month заполнены для OpShowGraph.
	Report []karma.DayActivity
	Year   int
	Month  time.Month
}
