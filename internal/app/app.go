// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики
// и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/ruhich/point-bot/internal/bot"
	"github.com/ruhich/point-bot/internal/config"
	"github.com/ruhich/point-bot/internal/db/postgres"
	"github.com/ruhich/point-bot/internal/features/admins"
	"github.com/ruhich/point-bot/internal/features/chats"
	"github.com/ruhich/point-bot/internal/features/karma"
	"github.com/ruhich/point-bot/internal/features/panel"
	"github.com/ruhich/point-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := cfg.Location()

	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	platform := bot.NewPlatformClient(botAPI)

	// === 3. Репозитории ===
	karmaRepo := karma.NewRepository(pool, loc)
	adminsRepo := admins.NewRepository(pool)
	chatsRepo := chats.NewRepository(pool)

	// === 4. Сервисы ===
	karmaService := karma.NewService(karmaRepo, loc)
	adminsService := admins.NewService(adminsRepo, platform, cfg.SuperAdminID)
	chatsService := chats.NewService(chatsRepo)
	panelService := panel.NewService(adminsService, karmaService, chatsService, loc)

	// === 5. Обработчики ===
	karmaHandler := karma.NewHandler(karmaService, adminsService, platform, botAPI, cfg.KarmaTopLimit)
	panelHandler := panel.NewHandler(panelService, platform, botAPI)

	// === 6. Собираем бота ===
	b := bot.New(botAPI, cfg, karmaService, karmaHandler, chatsService, panelHandler)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(karmaService, cfg.ResetCronSpec(), loc)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Scores},
		{2, migration002Admins},
		{3, migration003Chats},
		{4, migration004Activity},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Scores = `
CREATE TABLE IF NOT EXISTS user_scores (
    user_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    score BIGINT NOT NULL DEFAULT 0,
    last_activity_month VARCHAR(7),
    PRIMARY KEY (user_id, chat_id)
);
CREATE INDEX IF NOT EXISTS idx_user_scores_chat_score ON user_scores(chat_id, score DESC);
`

var migration002Admins = `
CREATE TABLE IF NOT EXISTS chat_admins (
    user_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, chat_id)
);
CREATE INDEX IF NOT EXISTS idx_chat_admins_chat ON chat_admins(chat_id);
`

var migration003Chats = `
CREATE TABLE IF NOT EXISTS chats (
    chat_id BIGINT PRIMARY KEY,
    title VARCHAR(255) NOT NULL DEFAULT '',
    chat_type VARCHAR(32) NOT NULL DEFAULT 'group',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

var migration004Activity = `
CREATE TABLE IF NOT EXISTS activity_log (
    id BIGSERIAL PRIMARY KEY,
    chat_id BIGINT NOT NULL,
    giver_id BIGINT NOT NULL,
    receiver_id BIGINT NOT NULL,
    score_change BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_activity_log_chat_created ON activity_log(chat_id, created_at);
`
