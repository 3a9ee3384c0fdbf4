package repository

import (
	"context"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
)

// ReportRepository — единое хранилище отчётов для подачи и отслеживания.
type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, id string) (*entity.Report, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*entity.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]*entity.Report, int, error)
	Update(ctx context.Context, report *entity.Report) error
	Stats(ctx context.Context) (*entity.Stats, error)
}

type ReportFilter struct {
	Status   string
	Category string
	Barangay string
	Limit    int
	Offset   int
}
