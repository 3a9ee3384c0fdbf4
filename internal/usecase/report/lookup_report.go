package report

import (
	"context"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/repository"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
	"github.com/ignatzorin/sanmateo-reports/internal/reportid"
)

// View — отчёт в виде для показа: история от новых записей к старым.
type View struct {
	Report   *entity.Report
	Timeline []entity.TimelineEntry
}

func NewView(r *entity.Report) *View {
	return &View{Report: r, Timeline: r.TimelineNewestFirst()}
}

// LookupResult — либо найденный отчёт, либо Found=false.
type LookupResult struct {
	Found  bool
	Report *View
}

type LookupReportUseCase struct {
	reportRepo repository.ReportRepository
}

func NewLookupReportUseCase(reportRepo repository.ReportRepository) *LookupReportUseCase {
	return &LookupReportUseCase{reportRepo: reportRepo}
}

// Execute ищет отчёт по идентификатору без учёта регистра.
// Отсутствие отчёта — не ошибка.
func (uc *LookupReportUseCase) Execute(ctx context.Context, id string) (LookupResult, error) {
	normalized := reportid.Normalize(id)
	if normalized == "" {
		return LookupResult{}, nil
	}

	found, err := uc.reportRepo.FindByID(ctx, normalized)
	if err != nil {
		if apperror.IsNotFound(err) {
			return LookupResult{}, nil
		}
		return LookupResult{}, err
	}
	return LookupResult{Found: true, Report: NewView(found)}, nil
}
