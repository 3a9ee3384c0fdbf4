package entity

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

const (
	MinDescriptionLength = 20
	MaxDescriptionLength = 500
	MaxAttachments       = 5
)

// Attachment — ссылка на загруженный медиафайл.
type Attachment struct {
	ID          uuid.UUID
	Key         string
	FileName    string
	ContentType string
	Size        int64
	URL         string
	CreatedAt   time.Time
}

type Reporter struct {
	Name  string
	Phone string
	Email string
}

// Draft — отчёт, который гражданин заполняет по шагам.
type Draft struct {
	Category      valueobject.Category
	Description   string
	Barangay      string
	StreetAddress string
	Coordinates   *valueobject.Coordinates
	Attachments   []Attachment
	Reporter      Reporter
}

// ValidateStep возвращает ошибки полей для шага 1..3. Пустой срез — шаг заполнен.
func (d *Draft) ValidateStep(step int) []apperror.FieldError {
	var errs []apperror.FieldError
	switch step {
	case 1:
		if d.Category == "" {
			errs = append(errs, apperror.FieldError{Field: "category", Message: "select an issue category"})
		}
		if utf8.RuneCountInString(d.Description) < MinDescriptionLength {
			errs = append(errs, apperror.FieldError{
				Field:   "description",
				Message: "description must be at least 20 characters",
			})
		}
	case 2:
		if d.Barangay == "" {
			errs = append(errs, apperror.FieldError{Field: "barangay", Message: "select a barangay"})
		}
		if d.Coordinates == nil {
			errs = append(errs, apperror.FieldError{Field: "location", Message: "pin the location on the map"})
		}
	case 3:
		if d.Reporter.Name == "" {
			errs = append(errs, apperror.FieldError{Field: "name", Message: "name is required"})
		}
		if d.Reporter.Phone == "" && d.Reporter.Email == "" {
			errs = append(errs, apperror.FieldError{Field: "contact", Message: "provide a phone number or an email"})
		}
	default:
		errs = append(errs, apperror.FieldError{Field: "step", Message: "unknown step"})
	}
	return errs
}

// IsStepComplete — предикат завершённости шага без побочных эффектов.
func (d *Draft) IsStepComplete(step int) bool {
	return len(d.ValidateStep(step)) == 0
}

// Clone делает глубокую копию, чтобы наружу не утекали ссылки на внутреннее состояние.
func (d *Draft) Clone() Draft {
	out := *d
	if d.Coordinates != nil {
		c := *d.Coordinates
		out.Coordinates = &c
	}
	out.Attachments = append([]Attachment(nil), d.Attachments...)
	return out
}

// TruncateDescription обрезает текст по MaxDescriptionLength рун.
func TruncateDescription(text string) string {
	if utf8.RuneCountInString(text) <= MaxDescriptionLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxDescriptionLength])
}
