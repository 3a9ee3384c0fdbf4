package report

import (
	"context"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/repository"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListReportsInput struct {
	Status   string
	Category string
	Barangay string
	Limit    int
	Offset   int
}

type ListReportsOutput struct {
	Reports []*entity.Report
	Total   int
	Limit   int
	Offset  int
}

type ListReportsUseCase struct {
	reportRepo repository.ReportRepository
}

func NewListReportsUseCase(reportRepo repository.ReportRepository) *ListReportsUseCase {
	return &ListReportsUseCase{reportRepo: reportRepo}
}

func (uc *ListReportsUseCase) Execute(ctx context.Context, input ListReportsInput) (*ListReportsOutput, error) {
	filter := repository.ReportFilter{
		Barangay: input.Barangay,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}

	if input.Status != "" && input.Status != "all" {
		status := valueobject.ReportStatus(input.Status)
		if status != valueobject.ReportStatusPending && !status.IsValid() {
			return nil, apperror.New(apperror.ErrCodeValidation, "unknown status filter")
		}
		filter.Status = input.Status
	}
	if input.Category != "" {
		if !valueobject.Category(input.Category).IsValid() {
			return nil, apperror.New(apperror.ErrCodeValidation, "unknown category filter")
		}
		filter.Category = input.Category
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	reports, total, err := uc.reportRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListReportsOutput{
		Reports: reports,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

// ListAll выбирает все отчёты под фильтр постранично, не более limit штук.
// Нужен для выгрузки и карты.
func (uc *ListReportsUseCase) ListAll(ctx context.Context, input ListReportsInput, limit int) ([]*entity.Report, error) {
	input.Limit = maxPageSize
	input.Offset = 0

	var out []*entity.Report
	for {
		page, err := uc.Execute(ctx, input)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Reports...)
		if len(page.Reports) == 0 || len(out) >= page.Total || (limit > 0 && len(out) >= limit) {
			break
		}
		input.Offset += len(page.Reports)
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
