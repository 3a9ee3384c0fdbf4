package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sanmateo-reports/internal/goroutine"
	"github.com/ignatzorin/sanmateo-reports/internal/logger"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/submission"
)

// Job — фоновая задача обслуживания.
type Job struct {
	Name string
	Run  func(ctx context.Context)
}

// Scheduler запускает задачи обслуживания по cron-расписанию.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	timeout time.Duration
}

// New создаёт планировщик. Задача не стартует повторно, пока не завершился предыдущий запуск.
func New(ctx context.Context, timeout time.Duration) *Scheduler {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return &Scheduler{cron: c, ctx: ctx, timeout: timeout}
}

// Add регистрирует задачу. schedule — стандартное cron-выражение или "@every 10m".
func (s *Scheduler) Add(schedule string, job Job) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.runJob(job) }); err != nil {
		return fmt.Errorf("scheduler: неверное расписание %q для %s: %w", schedule, job.Name, err)
	}
	return nil
}

// Start запускает планировщик в фоне.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.WithFields(logrus.Fields{"jobs": len(s.cron.Entries())}).Info("планировщик запущен")
}

// Stop останавливает планировщик и ждёт завершения текущих задач.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runJob(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	started := time.Now()
	if goroutine.DefaultRecoveryHandler.Run(func() { job.Run(ctx) }) {
		return
	}
	logger.WithFields(logrus.Fields{
		"job":      job.Name,
		"duration": time.Since(started).String(),
	}).Debug("задача планировщика выполнена")
}

// ExpiredDraftsJob удаляет просроченные черновики вместе с их файлами.
func ExpiredDraftsJob(sessions *submission.SessionStore, attachments *submission.AttachmentService) Job {
	return Job{
		Name: "expired-drafts",
		Run: func(ctx context.Context) {
			expired := sessions.PurgeExpired()
			for _, wf := range expired {
				attachments.Cleanup(ctx, wf)
			}
			if len(expired) > 0 {
				logger.WithFields(logrus.Fields{"count": len(expired)}).Info("удалены просроченные черновики")
			}
		},
	}
}

// CachePurger — кэш с очисткой просроченных записей.
type CachePurger interface {
	PurgeExpired() int
}

// CacheJob чистит просроченные записи кэша.
func CacheJob(cache CachePurger) Job {
	return Job{
		Name: "cache-purge",
		Run: func(context.Context) {
			if n := cache.PurgeExpired(); n > 0 {
				logger.WithFields(logrus.Fields{"count": n}).Debug("очищены записи кэша")
			}
		},
	}
}
