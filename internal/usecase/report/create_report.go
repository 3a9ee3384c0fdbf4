package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/repository"
	"github.com/ignatzorin/sanmateo-reports/internal/logger"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

// IDGenerator выдаёт публичные идентификаторы отчётов.
type IDGenerator interface {
	Generate() (string, error)
}

// Cache — кэш агрегатов админ-панели.
type Cache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error)
	InvalidateByPrefix(prefix string)
}

type CreateReportInput struct {
	Draft          entity.Draft
	IdempotencyKey string
}

type CreateReportUseCase struct {
	reportRepo repository.ReportRepository
	ids        IDGenerator
	cache      Cache
	now        func() time.Time
}

func NewCreateReportUseCase(reportRepo repository.ReportRepository, ids IDGenerator, cache Cache) *CreateReportUseCase {
	return &CreateReportUseCase{reportRepo: reportRepo, ids: ids, cache: cache, now: time.Now}
}

// Execute фиксирует черновик как отчёт. Повтор с тем же ключом идемпотентности
// возвращает уже созданный отчёт.
func (uc *CreateReportUseCase) Execute(ctx context.Context, input CreateReportInput) (*entity.Report, error) {
	if input.IdempotencyKey != "" {
		existing, err := uc.reportRepo.FindByIdempotencyKey(ctx, input.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	}

	id, err := uc.ids.Generate()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "could not generate report identifier")
	}

	report, err := entity.NewReport(id, input.Draft, input.IdempotencyKey, uc.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := uc.reportRepo.Create(ctx, report); err != nil {
		// Параллельный запрос с тем же ключом мог успеть первым.
		if apperror.IsConflict(err) && input.IdempotencyKey != "" {
			if existing, findErr := uc.reportRepo.FindByIdempotencyKey(ctx, input.IdempotencyKey); findErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.InvalidateByPrefix(DashboardCachePrefix)
	}

	logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"category":  report.Category,
		"barangay":  report.Barangay,
	}).Info("отчёт зарегистрирован")

	return report, nil
}

// Submit реализует submission.ReportSubmitter.
func (uc *CreateReportUseCase) Submit(ctx context.Context, draft entity.Draft, idempotencyKey string) (string, error) {
	report, err := uc.Execute(ctx, CreateReportInput{Draft: draft, IdempotencyKey: idempotencyKey})
	if err != nil {
		return "", err
	}
	return report.ID, nil
}
