// Package karma реализует систему репутации (кармы) по чатам.
// models.go описывает структуры для хранения баллов и журнала активности.
package karma

import "time"

// UserScore хранит карму пользователя в конкретном чате.
// Пара (user_id, chat_id) уникальна.
type UserScore struct {
	UserID int64 `db:"user_id"`
	ChatID int64 `db:"chat_id"`
	Score  int64 `db:"score"`
	// Месяц последней активности в формате "2006-01".
	// Обновляется при каждом изменении счёта и сравнивается
	// при ежемесячном сбросе. Сброс эту метку НЕ трогает.
	LastActivityMonth *string `db:"last_activity_month"`
}

// TopEntry — строка рейтинга чата.
type TopEntry struct {
	UserID int64
	Score  int64
}

// ActivityRecord — запись журнала о выдаче кармы. Только добавляется,
// никогда не изменяется: это аудит, а не источник текущего счёта.
type ActivityRecord struct {
	ID          int64     `db:"id"`
	ChatID      int64     `db:"chat_id"`
	GiverID     int64     `db:"giver_id"`
	ReceiverID  int64     `db:"receiver_id"`
	ScoreChange int64     `db:"score_change"`
	CreatedAt   time.Time `db:"created_at"`
}

// DayActivity — суммарное изменение кармы за один день месяца.
// Дни без активности в выборку не попадают.
type DayActivity struct {
	Day       int
	NetChange int64
}

// ChatMonth — чат и его месяц последней активности.
// Используется ежемесячным сбросом: чат рассматривается как единое целое,
// берётся максимальная метка среди участников.
type ChatMonth struct {
	ChatID int64
	Month  string
}

// Adjustment — результат применённого изменения кармы.
type Adjustment struct {
	Delta    int64
	NewScore int64
}
