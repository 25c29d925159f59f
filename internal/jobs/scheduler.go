// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневную проверку
// месячного сброса кармы.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/ruhich/point-bot/internal/features/karma"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron         *cron.Cron
	karmaService *karma.Service
	resetSpec    string
}

// NewScheduler создаёт планировщик задач в заданном часовом поясе.
func NewScheduler(karmaService *karma.Service, resetSpec string, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		karmaService: karmaService,
		resetSpec:    resetSpec,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ежедневная проверка границы месяца. Время сдвинуто от полуночи,
	// чтобы не решать, к каким суткам относится сам момент запуска.
	if _, err := s.cron.AddFunc(s.resetSpec, func() {
		log.Info("[CRON] Проверка месячного сброса кармы")
		if err := s.karmaService.ResetMonthlyIfNeeded(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка месячного сброса")
		}
	}); err != nil {
		log.WithError(err).WithField("spec", s.resetSpec).Error("Не удалось добавить cron-задачу")
		return
	}

	s.cron.Start()
	log.WithField("spec", s.resetSpec).Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и дожидается текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
