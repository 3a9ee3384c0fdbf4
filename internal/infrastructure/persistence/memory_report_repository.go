package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/repository"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

// MemoryReportRepository хранит отчёты в памяти процесса.
// Наружу всегда отдаются копии.
type MemoryReportRepository struct {
	mu            sync.RWMutex
	reports       map[string]*entity.Report
	byIdempotency map[string]string
}

func NewMemoryReportRepository(seed ...*entity.Report) *MemoryReportRepository {
	repo := &MemoryReportRepository{
		reports:       make(map[string]*entity.Report),
		byIdempotency: make(map[string]string),
	}
	for _, r := range seed {
		repo.reports[r.ID] = r.Clone()
		if r.IdempotencyKey != "" {
			repo.byIdempotency[r.IdempotencyKey] = r.ID
		}
	}
	return repo
}

func (r *MemoryReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[report.ID]; exists {
		return apperror.ErrDuplicateReportID
	}
	if report.IdempotencyKey != "" {
		if _, exists := r.byIdempotency[report.IdempotencyKey]; exists {
			return apperror.New(apperror.ErrCodeConflict, "idempotency key already used")
		}
		r.byIdempotency[report.IdempotencyKey] = report.ID
	}
	r.reports[report.ID] = report.Clone()
	return nil
}

func (r *MemoryReportRepository) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, apperror.ErrReportNotFound
	}
	return report.Clone(), nil
}

func (r *MemoryReportRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entity.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byIdempotency[key]
	if !ok {
		return nil, apperror.ErrReportNotFound
	}
	return r.reports[id].Clone(), nil
}

func (r *MemoryReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matched := make([]*entity.Report, 0, len(r.reports))
	for _, report := range r.reports {
		if matchesFilter(report, filter) {
			matched = append(matched, report.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return []*entity.Report{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

// Update сохраняет статус, назначение и историю. История только дописывается:
// если сохранённая история не является началом переданной, запись устарела.
func (r *MemoryReportRepository) Update(ctx context.Context, report *entity.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reports[report.ID]
	if !ok {
		return apperror.ErrReportNotFound
	}
	if !report.ExtendsTimeline(stored.Timeline) {
		return apperror.ErrStaleReport
	}
	r.reports[report.ID] = report.Clone()
	return nil
}

func (r *MemoryReportRepository) Stats(ctx context.Context) (*entity.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &entity.Stats{
		ByCategory: make(map[valueobject.Category]int),
		ByBarangay: make(map[string]int),
	}
	for _, report := range r.reports {
		stats.Total++
		switch report.Status {
		case valueobject.ReportStatusSubmitted, valueobject.ReportStatusReviewed:
			stats.Pending++
		case valueobject.ReportStatusAssigned, valueobject.ReportStatusInProgress:
			stats.InProgress++
		case valueobject.ReportStatusResolved:
			stats.Resolved++
		case valueobject.ReportStatusRejected:
			stats.Rejected++
		}
		stats.ByCategory[report.Category]++
		stats.ByBarangay[report.Barangay]++
	}
	return stats, nil
}

func matchesFilter(report *entity.Report, filter repository.ReportFilter) bool {
	if filter.Status != "" {
		status := valueobject.ReportStatus(filter.Status)
		if status == valueobject.ReportStatusPending {
			if !report.Status.IsPending() {
				return false
			}
		} else if report.Status != status {
			return false
		}
	}
	if filter.Category != "" && string(report.Category) != filter.Category {
		return false
	}
	if filter.Barangay != "" && report.Barangay != filter.Barangay {
		return false
	}
	return true
}
