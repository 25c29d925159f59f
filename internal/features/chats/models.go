// Package chats ведёт реестр групповых чатов, где бот видел активность.
// models.go описывает структуру записи о чате.
package chats

import "time"

// Chat — зарегистрированный чат.
// Запись создаётся при первом входящем событии из чата и дальше
// не обновляется: первое записанное имя остаётся, даже если чат
// переименовали (политика first-write-wins, а не синхронизация).
type Chat struct {
	ChatID    int64     `db:"chat_id"`
	Title     string    `db:"title"`
	ChatType  string    `db:"chat_type"` // group, supergroup, channel
	CreatedAt time.Time `db:"created_at"`
}
