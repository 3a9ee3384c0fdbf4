package entity

import (
	"time"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

const initialTimelineMessage = "Report received and logged into the system."

// TimelineEntry — одна запись истории изменения статуса.
type TimelineEntry struct {
	Date    time.Time
	Status  valueobject.ReportStatus
	Message string
}

// Report — зафиксированный отчёт. Timeline хранится в хронологическом порядке.
type Report struct {
	ID             string
	Category       valueobject.Category
	Description    string
	Barangay       string
	StreetAddress  string
	Coordinates    valueobject.Coordinates
	Status         valueobject.ReportStatus
	Priority       valueobject.Priority
	Department     string
	AssignedTo     *string
	SubmittedAt    time.Time
	UpdatedAt      time.Time
	Timeline       []TimelineEntry
	Attachments    []string
	Reporter       Reporter
	IdempotencyKey string
}

// NewReport создаёт отчёт из заполненного черновика.
func NewReport(id string, draft Draft, idempotencyKey string, now time.Time) (*Report, error) {
	for step := 1; step <= 3; step++ {
		if errs := draft.ValidateStep(step); len(errs) > 0 {
			return nil, apperror.Validation("draft is incomplete", errs)
		}
	}
	if !draft.Category.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "unknown issue category")
	}

	attachments := make([]string, 0, len(draft.Attachments))
	for _, att := range draft.Attachments {
		attachments = append(attachments, att.URL)
	}

	return &Report{
		ID:             id,
		Category:       draft.Category,
		Description:    draft.Description,
		Barangay:       draft.Barangay,
		StreetAddress:  draft.StreetAddress,
		Coordinates:    *draft.Coordinates,
		Status:         valueobject.ReportStatusSubmitted,
		Priority:       valueobject.PriorityMedium,
		Department:     draft.Category.Department(),
		SubmittedAt:    now,
		UpdatedAt:      now,
		Timeline:       []TimelineEntry{{Date: now, Status: valueobject.ReportStatusSubmitted, Message: initialTimelineMessage}},
		Attachments:    attachments,
		Reporter:       draft.Reporter,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// AppendUpdate добавляет запись в конец истории и синхронизирует текущий статус.
func (r *Report) AppendUpdate(entry TimelineEntry) error {
	if !entry.Status.IsValid() {
		return apperror.New(apperror.ErrCodeValidation, "invalid report status")
	}
	if !r.Status.CanTransitionTo(entry.Status) {
		return apperror.ErrInvalidTransition
	}
	if n := len(r.Timeline); n > 0 && entry.Date.Before(r.Timeline[n-1].Date) {
		return apperror.New(apperror.ErrCodeValidation, "timeline entry is older than the latest update")
	}

	r.Timeline = append(r.Timeline, entry)
	r.Status = entry.Status
	r.UpdatedAt = entry.Date
	return nil
}

// ExtendsTimeline сообщает, что stored является началом истории отчёта.
// Репозитории отклоняют запись, если с момента чтения история ушла вперёд.
func (r *Report) ExtendsTimeline(stored []TimelineEntry) bool {
	if len(stored) > len(r.Timeline) {
		return false
	}
	for i, entry := range stored {
		if !sameEntry(entry, r.Timeline[i]) {
			return false
		}
	}
	return true
}

// Даты сравниваются с точностью timestamptz.
func sameEntry(a, b TimelineEntry) bool {
	return a.Status == b.Status &&
		a.Message == b.Message &&
		a.Date.Truncate(time.Microsecond).Equal(b.Date.Truncate(time.Microsecond))
}

// TimelineNewestFirst возвращает копию истории в обратном порядке для отображения.
func (r *Report) TimelineNewestFirst() []TimelineEntry {
	out := make([]TimelineEntry, len(r.Timeline))
	for i, entry := range r.Timeline {
		out[len(r.Timeline)-1-i] = entry
	}
	return out
}

// Consistent проверяет, что статус совпадает со статусом последней записи истории.
func (r *Report) Consistent() bool {
	if len(r.Timeline) == 0 {
		return false
	}
	return r.Timeline[len(r.Timeline)-1].Status == r.Status
}

func (r *Report) Clone() *Report {
	out := *r
	if r.AssignedTo != nil {
		a := *r.AssignedTo
		out.AssignedTo = &a
	}
	out.Timeline = append([]TimelineEntry(nil), r.Timeline...)
	out.Attachments = append([]string(nil), r.Attachments...)
	return &out
}

// Stats — агрегаты для админ-панели.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Resolved   int
	Rejected   int
	ByCategory map[valueobject.Category]int
	ByBarangay map[string]int
}
