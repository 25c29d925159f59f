// Package chats — repository.go работает с таблицей chats.
package chats

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей chats.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий чатов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Register регистрирует чат, если его ещё нет.
// Явный insert-if-absent: существующая запись не перезаписывается.
func (r *Repository) Register(ctx context.Context, chatID int64, title, chatType string) error {
	query := `
		INSERT INTO chats (chat_id, title, chat_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, chatID, title, chatType); err != nil {
		return fmt.Errorf("ошибка регистрации чата %d: %w", chatID, err)
	}
	return nil
}

// List возвращает все зарегистрированные чаты.
func (r *Repository) List(ctx context.Context) ([]Chat, error) {
	query := `SELECT chat_id, title, chat_type, created_at FROM chats ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса чатов: %w", err)
	}
	defer rows.Close()

	var out []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ChatID, &c.Title, &c.ChatType, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}
