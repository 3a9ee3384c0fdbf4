package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/report"
	"github.com/ignatzorin/sanmateo-reports/internal/validation"
)

// CreateReportRequest — прямая отправка готового отчёта одним запросом.
type CreateReportRequest struct {
	Category      string   `json:"category" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Barangay      string   `json:"barangay" binding:"required"`
	StreetAddress string   `json:"street_address"`
	Latitude      *float64 `json:"latitude" binding:"required"`
	Longitude     *float64 `json:"longitude" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
}

// ToDraft собирает черновик и проверяет поля, которые не проверяет домен.
func (r CreateReportRequest) ToDraft() (entity.Draft, error) {
	var fields []apperror.FieldError

	category, err := valueobject.NewCategory(r.Category)
	if err != nil {
		fields = append(fields, apperror.FieldError{Field: "category", Message: "select an issue category"})
	}
	if !valueobject.IsKnownBarangay(r.Barangay) {
		fields = append(fields, apperror.FieldError{Field: "barangay", Message: "unknown barangay"})
	}
	if err := validation.ValidateStreetAddress(r.StreetAddress); err != nil {
		fields = append(fields, apperror.FieldError{Field: "street_address", Message: err.Error()})
	}

	var coords *valueobject.Coordinates
	if r.Latitude != nil && r.Longitude != nil {
		c, err := valueobject.NewCoordinates(*r.Latitude, *r.Longitude)
		if err != nil {
			msg := "invalid coordinates"
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				msg = appErr.Message
			}
			fields = append(fields, apperror.FieldError{Field: "location", Message: msg})
		} else {
			coords = &c
		}
	}

	contact := ContactRequest{Name: r.Name, Phone: r.Phone, Email: r.Email}
	fields = append(fields, contact.Validate()...)

	if len(fields) > 0 {
		return entity.Draft{}, apperror.Validation("report has invalid fields", fields)
	}

	return entity.Draft{
		Category:      category,
		Description:   entity.TruncateDescription(strings.TrimSpace(r.Description)),
		Barangay:      r.Barangay,
		StreetAddress: strings.TrimSpace(r.StreetAddress),
		Coordinates:   coords,
		Reporter:      contact.ToReporter(),
	}, nil
}

type CreateReportResponse struct {
	ID string `json:"id"`
}

type CoordinatesDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type TimelineEntryDTO struct {
	Date    time.Time `json:"date"`
	Status  string    `json:"status"`
	Badge   string    `json:"badge"`
	Message string    `json:"message"`
}

// ReportResponse — публичный вид отчёта. Контакты заявителя не раскрываются.
type ReportResponse struct {
	ID            string             `json:"id"`
	Category      string             `json:"category"`
	CategoryLabel string             `json:"category_label"`
	CategoryIcon  string             `json:"category_icon"`
	Description   string             `json:"description"`
	Barangay      string             `json:"barangay"`
	StreetAddress string             `json:"street_address,omitempty"`
	Coordinates   CoordinatesDTO     `json:"coordinates"`
	InServiceArea bool               `json:"in_service_area"`
	Status        string             `json:"status"`
	Badge         string             `json:"badge"`
	Priority      string             `json:"priority"`
	PriorityLabel string             `json:"priority_label"`
	Department    string             `json:"department"`
	AssignedTo    *string            `json:"assigned_to"`
	SubmittedAt   time.Time          `json:"submitted_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Timeline      []TimelineEntryDTO `json:"timeline"`
	Attachments   []string           `json:"attachments"`
}

type ReporterDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// AdminReportResponse дополняет публичный вид контактами заявителя.
type AdminReportResponse struct {
	ReportResponse
	Reporter ReporterDTO `json:"reporter"`
}

// ToReportResponse строит публичный вид; история от новых записей к старым.
func ToReportResponse(r *entity.Report) ReportResponse {
	return toReportResponse(report.NewView(r))
}

// ToReportView — то же для результата поиска.
func ToReportView(v *report.View) ReportResponse {
	return toReportResponse(v)
}

func toReportResponse(v *report.View) ReportResponse {
	r := v.Report
	resp := ReportResponse{
		ID:            r.ID,
		Category:      string(r.Category),
		CategoryLabel: r.Category.Label(),
		CategoryIcon:  r.Category.Icon(),
		Description:   r.Description,
		Barangay:      r.Barangay,
		StreetAddress: r.StreetAddress,
		Coordinates:   CoordinatesDTO{Latitude: r.Coordinates.Latitude, Longitude: r.Coordinates.Longitude},
		InServiceArea: r.Coordinates.InServiceArea(),
		Status:        string(r.Status),
		Badge:         string(valueobject.BadgeFor(string(r.Status))),
		Priority:      string(r.Priority),
		PriorityLabel: r.Priority.Label(),
		Department:    r.Department,
		AssignedTo:    r.AssignedTo,
		SubmittedAt:   r.SubmittedAt,
		UpdatedAt:     r.UpdatedAt,
		Timeline:      make([]TimelineEntryDTO, 0, len(v.Timeline)),
		Attachments:   append([]string{}, r.Attachments...),
	}
	for _, entry := range v.Timeline {
		resp.Timeline = append(resp.Timeline, TimelineEntryDTO{
			Date:    entry.Date,
			Status:  string(entry.Status),
			Badge:   string(valueobject.BadgeFor(string(entry.Status))),
			Message: entry.Message,
		})
	}
	return resp
}

func ToAdminReportResponse(r *entity.Report) AdminReportResponse {
	return AdminReportResponse{
		ReportResponse: ToReportResponse(r),
		Reporter: ReporterDTO{
			Name:  r.Reporter.Name,
			Phone: r.Reporter.Phone,
			Email: r.Reporter.Email,
		},
	}
}

func ToAdminReportResponses(reports []*entity.Report) []AdminReportResponse {
	responses := make([]AdminReportResponse, 0, len(reports))
	for _, r := range reports {
		responses = append(responses, ToAdminReportResponse(r))
	}
	return responses
}

// PresentReport — представление для WebSocket-рассылки.
func PresentReport(r *entity.Report) any {
	return ToReportResponse(r)
}
