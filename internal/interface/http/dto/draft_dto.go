package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/submission"
	"github.com/ignatzorin/sanmateo-reports/internal/validation"
)

// DetailsRequest: незаданное поле не меняется.
type DetailsRequest struct {
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

// LocationRequest: незаданное поле не меняется. Координаты задаются парой,
// метка снимается только явным clear_location.
type LocationRequest struct {
	Barangay      *string  `json:"barangay"`
	StreetAddress *string  `json:"street_address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ClearLocation bool     `json:"clear_location"`
}

func (r LocationRequest) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

func (r LocationRequest) PartialCoordinates() bool {
	return (r.Latitude == nil) != (r.Longitude == nil)
}

// ToLocationUpdate проверяет запрос целиком до того, как черновик будет изменён.
func (r LocationRequest) ToLocationUpdate() (submission.LocationUpdate, error) {
	var fields []apperror.FieldError
	update := submission.LocationUpdate{ClearCoordinates: r.ClearLocation}

	if r.Barangay != nil {
		name := strings.TrimSpace(*r.Barangay)
		if name != "" && !valueobject.IsKnownBarangay(name) {
			fields = append(fields, apperror.FieldError{Field: "barangay", Message: "unknown barangay"})
		}
		update.Barangay = &name
	}
	if r.StreetAddress != nil {
		street := strings.TrimSpace(*r.StreetAddress)
		if err := validation.ValidateStreetAddress(street); err != nil {
			fields = append(fields, apperror.FieldError{Field: "street_address", Message: err.Error()})
		}
		update.StreetAddress = &street
	}

	switch {
	case r.PartialCoordinates():
		fields = append(fields, apperror.FieldError{Field: "location", Message: "latitude and longitude must be set together"})
	case r.HasCoordinates() && r.ClearLocation:
		fields = append(fields, apperror.FieldError{Field: "location", Message: "set coordinates or clear them, not both"})
	case r.HasCoordinates():
		coords, err := valueobject.NewCoordinates(*r.Latitude, *r.Longitude)
		if err != nil {
			msg := "invalid coordinates"
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				msg = appErr.Message
			}
			fields = append(fields, apperror.FieldError{Field: "location", Message: msg})
		} else {
			update.Coordinates = &coords
		}
	}

	if len(fields) > 0 {
		return submission.LocationUpdate{}, apperror.Validation("location is invalid", fields)
	}
	return update, nil
}

type ContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ValidateFormat проверяет формат заданных полей. Обязательность проверяет сам черновик на шаге 3.
func (r ContactRequest) ValidateFormat() []apperror.FieldError {
	var fields []apperror.FieldError
	if strings.TrimSpace(r.Name) != "" {
		if err := validation.ValidateReporterName(r.Name); err != nil {
			fields = append(fields, apperror.FieldError{Field: "name", Message: err.Error()})
		}
	}
	if strings.TrimSpace(r.Phone) != "" {
		if err := validation.ValidatePhone(r.Phone); err != nil {
			fields = append(fields, apperror.FieldError{Field: "phone", Message: err.Error()})
		}
	}
	if strings.TrimSpace(r.Email) != "" {
		if err := validation.ValidateEmail(r.Email); err != nil {
			fields = append(fields, apperror.FieldError{Field: "email", Message: err.Error()})
		}
	}
	return fields
}

// Validate проверяет и наличие, и формат контактов.
func (r ContactRequest) Validate() []apperror.FieldError {
	var fields []apperror.FieldError
	if err := validation.ValidateReporterName(r.Name); err != nil {
		fields = append(fields, apperror.FieldError{Field: "name", Message: err.Error()})
	}
	contactErrs := validation.ValidateContact(r.Phone, r.Email)
	for _, field := range []string{"phone", "email"} {
		if msg, ok := contactErrs[field]; ok {
			fields = append(fields, apperror.FieldError{Field: field, Message: msg})
		}
	}
	return fields
}

func (r ContactRequest) ToReporter() entity.Reporter {
	return entity.Reporter{
		Name:  strings.TrimSpace(r.Name),
		Phone: validation.NormalizePhone(r.Phone),
		Email: strings.ToLower(strings.TrimSpace(r.Email)),
	}
}

type AttachmentResponse struct {
	Index       int       `json:"index"`
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

type DraftResponse struct {
	SessionID      uuid.UUID             `json:"session_id"`
	State          string                `json:"state"`
	Step           int                   `json:"step"`
	Category       string                `json:"category"`
	CategoryLabel  string                `json:"category_label,omitempty"`
	Description    string                `json:"description"`
	DescriptionMax int                   `json:"description_max"`
	Barangay       string                `json:"barangay"`
	StreetAddress  string                `json:"street_address"`
	Coordinates    *CoordinatesDTO       `json:"coordinates"`
	Attachments    []AttachmentResponse  `json:"attachments"`
	AttachmentsMax int                   `json:"attachments_max"`
	Reporter       ReporterDTO           `json:"reporter"`
	Errors         []apperror.FieldError `json:"errors"`
	CanAdvance     bool                  `json:"can_advance"`
	ReportID       string                `json:"report_id,omitempty"`
	LastError      string                `json:"last_error,omitempty"`
}

func ToDraftResponse(sessionID uuid.UUID, view submission.View) DraftResponse {
	d := view.Draft
	resp := DraftResponse{
		SessionID:      sessionID,
		State:          string(view.State),
		Step:           int(view.Step),
		Category:       string(d.Category),
		Description:    d.Description,
		DescriptionMax: entity.MaxDescriptionLength,
		Barangay:       d.Barangay,
		StreetAddress:  d.StreetAddress,
		Attachments:    ToAttachmentResponses(d.Attachments),
		AttachmentsMax: entity.MaxAttachments,
		Reporter:       ReporterDTO{Name: d.Reporter.Name, Phone: d.Reporter.Phone, Email: d.Reporter.Email},
		Errors:         append([]apperror.FieldError{}, view.Errors...),
		CanAdvance:     view.CanAdvance,
		ReportID:       view.ReportID,
		LastError:      view.LastError,
	}
	if d.Category != "" {
		resp.CategoryLabel = d.Category.Label()
	}
	if d.Coordinates != nil {
		resp.Coordinates = &CoordinatesDTO{Latitude: d.Coordinates.Latitude, Longitude: d.Coordinates.Longitude}
	}
	return resp
}

func ToAttachmentResponses(items []entity.Attachment) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(items))
	for i, att := range items {
		out = append(out, AttachmentResponse{
			Index:       i,
			ID:          att.ID,
			FileName:    att.FileName,
			ContentType: att.ContentType,
			Size:        att.Size,
			URL:         att.URL,
			CreatedAt:   att.CreatedAt,
		})
	}
	return out
}

type SubmitResponse struct {
	ID string `json:"id"`
}
