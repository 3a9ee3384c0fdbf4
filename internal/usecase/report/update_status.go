package report

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/repository"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/logger"
	"github.com/ignatzorin/sanmateo-reports/internal/reportid"
)

// UpdateNotifier рассылает изменения отчёта подписчикам живого отслеживания.
type UpdateNotifier interface {
	NotifyReportUpdated(report *entity.Report)
}

type UpdateStatusInput struct {
	ReportID   string
	Status     string
	Message    string
	AssignedTo *string
	Priority   string
}

var defaultStatusMessages = map[valueobject.ReportStatus]string{
	valueobject.ReportStatusReviewed:   "Report reviewed by the municipal office.",
	valueobject.ReportStatusAssigned:   "Report assigned to a response team.",
	valueobject.ReportStatusInProgress: "Team dispatched to location. Work in progress.",
	valueobject.ReportStatusResolved:   "Issue resolved.",
	valueobject.ReportStatusRejected:   "Report rejected.",
}

type UpdateStatusUseCase struct {
	reportRepo repository.ReportRepository
	notifier   UpdateNotifier
	cache      Cache
	now        func() time.Time
}

func NewUpdateStatusUseCase(reportRepo repository.ReportRepository, notifier UpdateNotifier, cache Cache) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{reportRepo: reportRepo, notifier: notifier, cache: cache, now: time.Now}
}

// Execute добавляет запись в историю отчёта, меняя текущий статус.
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, input UpdateStatusInput) (*entity.Report, error) {
	status, err := valueobject.NewReportStatus(input.Status)
	if err != nil {
		return nil, err
	}

	var priority valueobject.Priority
	if input.Priority != "" {
		if priority, err = valueobject.NewPriority(input.Priority); err != nil {
			return nil, err
		}
	}

	report, err := uc.reportRepo.FindByID(ctx, reportid.Normalize(input.ReportID))
	if err != nil {
		return nil, err
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		message = defaultStatusMessages[status]
	}

	previous := report.Status
	if err := report.AppendUpdate(entity.TimelineEntry{
		Date:    uc.now().UTC(),
		Status:  status,
		Message: message,
	}); err != nil {
		return nil, err
	}

	if input.AssignedTo != nil {
		assigned := strings.TrimSpace(*input.AssignedTo)
		if assigned == "" {
			report.AssignedTo = nil
		} else {
			report.AssignedTo = &assigned
		}
	}
	if priority != "" {
		report.Priority = priority
	}

	if err := uc.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.InvalidateByPrefix(DashboardCachePrefix)
	}
	if uc.notifier != nil {
		uc.notifier.NotifyReportUpdated(report.Clone())
	}

	logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"from":      previous,
		"to":        report.Status,
	}).Info("статус отчёта изменён")

	return report, nil
}
