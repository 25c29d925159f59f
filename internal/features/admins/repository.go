// Package admins управляет назначенными (делегированными) админами чатов.
// repository.go работает с таблицей chat_admins.
package admins

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей chat_admins.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий назначенных админов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Add назначает пользователя админом чата. Повторное назначение — no-op.
func (r *Repository) Add(ctx context.Context, userID, chatID int64) error {
	query := `
		INSERT INTO chat_admins (user_id, chat_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, chat_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, userID, chatID); err != nil {
		return fmt.Errorf("ошибка назначения админа (user=%d chat=%d): %w", userID, chatID, err)
	}
	return nil
}

// Remove снимает назначение. Отсутствие записи — тоже no-op.
func (r *Repository) Remove(ctx context.Context, userID, chatID int64) error {
	query := `DELETE FROM chat_admins WHERE user_id = $1 AND chat_id = $2`
	if _, err := r.db.Exec(ctx, query, userID, chatID); err != nil {
		return fmt.Errorf("ошибка снятия админа (user=%d chat=%d): %w", userID, chatID, err)
	}
	return nil
}

// IsAdmin проверяет, назначен ли пользователь админом чата.
func (r *Repository) IsAdmin(ctx context.Context, userID, chatID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM chat_admins WHERE user_id = $1 AND chat_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, chatID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки админа: %w", err)
	}
	return exists, nil
}

// List возвращает user_id всех назначенных админов чата.
func (r *Repository) List(ctx context.Context, chatID int64) ([]int64, error) {
	query := `SELECT user_id FROM chat_admins WHERE chat_id = $1`
	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса админов чата %d: %w", chatID, err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}
