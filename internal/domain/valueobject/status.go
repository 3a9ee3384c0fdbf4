package valueobject

import (
	"strings"

	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

type ReportStatus string

const (
	ReportStatusSubmitted  ReportStatus = "submitted"
	ReportStatusReviewed   ReportStatus = "reviewed"
	ReportStatusAssigned   ReportStatus = "assigned"
	ReportStatusInProgress ReportStatus = "in-progress"
	ReportStatusResolved   ReportStatus = "resolved"
	ReportStatusRejected   ReportStatus = "rejected"

	// ReportStatusPending используется только для отображения и фильтрации:
	// объединяет submitted и reviewed.
	ReportStatusPending ReportStatus = "pending"
)

var reportStatuses = []ReportStatus{
	ReportStatusSubmitted,
	ReportStatusReviewed,
	ReportStatusAssigned,
	ReportStatusInProgress,
	ReportStatusResolved,
	ReportStatusRejected,
}

func ReportStatuses() []ReportStatus {
	out := make([]ReportStatus, len(reportStatuses))
	copy(out, reportStatuses)
	return out
}

func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusSubmitted, ReportStatusReviewed, ReportStatusAssigned,
		ReportStatusInProgress, ReportStatusResolved, ReportStatusRejected:
		return true
	}
	return false
}

// IsPending сообщает, попадает ли статус под отображаемый алиас pending.
func (s ReportStatus) IsPending() bool {
	return s == ReportStatusSubmitted || s == ReportStatusReviewed || s == ReportStatusPending
}

func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusResolved || s == ReportStatusRejected
}

func (s ReportStatus) CanTransitionTo(newStatus ReportStatus) bool {
	transitions := map[ReportStatus][]ReportStatus{
		ReportStatusSubmitted:  {ReportStatusReviewed, ReportStatusRejected},
		ReportStatusReviewed:   {ReportStatusAssigned, ReportStatusRejected},
		ReportStatusAssigned:   {ReportStatusInProgress, ReportStatusRejected},
		ReportStatusInProgress: {ReportStatusResolved, ReportStatusRejected},
		ReportStatusResolved:   {},
		ReportStatusRejected:   {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewReportStatus(status string) (ReportStatus, error) {
	s := ReportStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid report status")
	}
	return s, nil
}

var statusLabels = map[ReportStatus]string{
	ReportStatusSubmitted:  "Submitted",
	ReportStatusReviewed:   "Under Review",
	ReportStatusAssigned:   "Assigned",
	ReportStatusInProgress: "In Progress",
	ReportStatusResolved:   "Resolved",
	ReportStatusRejected:   "Rejected",
	ReportStatusPending:    "Pending",
}

// Label — подпись статуса для интерфейса.
func (s ReportStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// BadgeVariant — визуальная категория статуса для бейджей.
type BadgeVariant string

const (
	BadgePending  BadgeVariant = "pending"
	BadgeProgress BadgeVariant = "progress"
	BadgeSuccess  BadgeVariant = "success"
	BadgeError    BadgeVariant = "error"
)

// BadgeFor отображает статус в визуальную категорию.
// Неизвестный статус всегда даёт pending, ошибку не поднимаем.
func BadgeFor(status string) BadgeVariant {
	switch ReportStatus(status) {
	case ReportStatusPending, ReportStatusSubmitted, ReportStatusReviewed:
		return BadgePending
	case ReportStatusAssigned, ReportStatusInProgress:
		return BadgeProgress
	case ReportStatusResolved:
		return BadgeSuccess
	case ReportStatusRejected:
		return BadgeError
	default:
		return BadgePending
	}
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func Priorities() []Priority {
	out := make([]Priority, len(priorities))
	copy(out, priorities)
	return out
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	}
	return string(p)
}

func NewPriority(priority string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(priority)))
	if !p.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "invalid priority")
	}
	return p, nil
}
