// Package karma — repository.go выполняет операции с таблицами user_scores
// и activity_log. Каждая мутация — один SQL-запрос: атомарность на уровне
// стейтмента избавляет от внешних блокировок при параллельных чатах.
package karma

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruhich/point-bot/internal/common"
)

// Repository работает с таблицами user_scores и activity_log.
type Repository struct {
	db  *pgxpool.Pool
	loc *time.Location
}

// NewRepository создаёт репозиторий кармы.
// loc определяет, в каком часовом поясе считаются календарные месяцы.
func NewRepository(db *pgxpool.Pool, loc *time.Location) *Repository {
	return &Repository{db: db, loc: loc}
}

// GetScore возвращает карму пользователя в чате.
// Если записи нет — 0, это не ошибка.
func (r *Repository) GetScore(ctx context.Context, userID, chatID int64) (int64, error) {
	query := `SELECT score FROM user_scores WHERE user_id = $1 AND chat_id = $2`
	var score int64
	err := r.db.QueryRow(ctx, query, userID, chatID).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения кармы (user=%d chat=%d): %w", userID, chatID, err)
	}
	return score, nil
}

// AdjustScore изменяет карму на delta одним upsert-запросом.
// Метка last_activity_month ставится на текущий месяц при КАЖДОМ вызове —
// именно с ней потом сверяется ежемесячный сброс.
func (r *Repository) AdjustScore(ctx context.Context, userID, chatID, delta int64) error {
	month := common.CurrentMonthKey(r.loc)
	query := `
		INSERT INTO user_scores (user_id, chat_id, score, last_activity_month)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, chat_id) DO UPDATE
		SET score = user_scores.score + $3,
		    last_activity_month = $4
	`
	if _, err := r.db.Exec(ctx, query, userID, chatID, delta, month); err != nil {
		return fmt.Errorf("ошибка изменения кармы (user=%d chat=%d): %w", userID, chatID, err)
	}
	return nil
}

// TopScores возвращает рейтинг чата по убыванию кармы.
// Тай-брейк по user_id — чтобы порядок внутри одного вызова был детерминирован.
func (r *Repository) TopScores(ctx context.Context, chatID int64, limit int) ([]TopEntry, error) {
	query := `
		SELECT user_id, score FROM user_scores
		WHERE chat_id = $1
		ORDER BY score DESC, user_id
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса рейтинга: %w", err)
	}
	defer rows.Close()

	var out []TopEntry
	for rows.Next() {
		var e TopEntry
		if err := rows.Scan(&e.UserID, &e.Score); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// ResetChatScores обнуляет карму всех участников чата.
// Метку last_activity_month НЕ трогаем: повторный сброс по устаревшей
// метке безвреден, счёт уже нулевой.
func (r *Repository) ResetChatScores(ctx context.Context, chatID int64) error {
	query := `UPDATE user_scores SET score = 0 WHERE chat_id = $1`
	if _, err := r.db.Exec(ctx, query, chatID); err != nil {
		return fmt.Errorf("ошибка сброса кармы чата %d: %w", chatID, err)
	}
	return nil
}

// DeleteScore удаляет запись кармы — пользователь окончательно покинул чат.
// Журнал активности при этом остаётся: осиротевшие ссылки ожидаемы.
func (r *Repository) DeleteScore(ctx context.Context, userID, chatID int64) error {
	query := `DELETE FROM user_scores WHERE user_id = $1 AND chat_id = $2`
	if _, err := r.db.Exec(ctx, query, userID, chatID); err != nil {
		return fmt.Errorf("ошибка удаления кармы (user=%d chat=%d): %w", userID, chatID, err)
	}
	return nil
}

// LogActivity добавляет запись в журнал активности.
func (r *Repository) LogActivity(ctx context.Context, chatID, giverID, receiverID, delta int64) error {
	query := `
		INSERT INTO activity_log (chat_id, giver_id, receiver_id, score_change)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, query, chatID, giverID, receiverID, delta); err != nil {
		return fmt.Errorf("ошибка записи журнала активности: %w", err)
	}
	return nil
}

// MonthlyActivity группирует журнал по дням указанного месяца.
// Возвращает дни по возрастанию, дни без активности опущены.
func (r *Repository) MonthlyActivity(ctx context.Context, chatID int64, year int, month time.Month) ([]DayActivity, error) {
	start, end := common.MonthBounds(year, month, r.loc)
	query := `
		SELECT EXTRACT(DAY FROM created_at AT TIME ZONE $4)::int AS day, SUM(score_change)
		FROM activity_log
		WHERE chat_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.Query(ctx, query, chatID, start, end, r.loc.String())
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса активности: %w", err)
	}
	defer rows.Close()

	var out []DayActivity
	for rows.Next() {
		var d DayActivity
		if err := rows.Scan(&d.Day, &d.NetChange); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// ChatMonths возвращает для каждого чата максимальную метку месяца активности.
// Максимум по участникам снимает неоднозначность «какую строку вернёт база».
func (r *Repository) ChatMonths(ctx context.Context) ([]ChatMonth, error) {
	query := `
		SELECT chat_id, MAX(last_activity_month)
		FROM user_scores
		WHERE last_activity_month IS NOT NULL
		GROUP BY chat_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса месяцев активности: %w", err)
	}
	defer rows.Close()

	var out []ChatMonth
	for rows.Next() {
		var cm ChatMonth
		if err := rows.Scan(&cm.ChatID, &cm.Month); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}
