package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden            ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest           ErrorCode = "BAD_REQUEST"
	ErrCodeConflict             ErrorCode = "CONFLICT"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation           ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	ErrCodeAttachmentLimit      ErrorCode = "ATTACHMENT_LIMIT"
	ErrCodeSubmissionInProgress ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeSubmissionFailed     ErrorCode = "SUBMISSION_FAILED"
	ErrCodeWorkflowClosed       ErrorCode = "WORKFLOW_CLOSED"
	ErrCodeUnsupportedMedia     ErrorCode = "UNSUPPORTED_MEDIA"
)

// FieldError описывает ошибку конкретного поля формы.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Fields     []FieldError
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал с обёрнутыми sentinel-ошибками.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation собирает ошибку валидации с деталями по полям.
func Validation(message string, fields []FieldError) *AppError {
	appErr := New(ErrCodeValidation, message)
	appErr.Fields = fields
	return appErr
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeAttachmentLimit:
		return http.StatusUnprocessableEntity
	case ErrCodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case ErrCodeConflict, ErrCodeSubmissionInProgress, ErrCodeWorkflowClosed:
		return http.StatusConflict
	case ErrCodeSubmissionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeConflict
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

var (
	ErrReportNotFound       = New(ErrCodeNotFound, "report not found")
	ErrDraftNotFound        = New(ErrCodeNotFound, "draft session not found or expired")
	ErrDuplicateReportID    = New(ErrCodeConflict, "report identifier already exists")
	ErrAttachmentLimit      = New(ErrCodeAttachmentLimit, "maximum 5 attachments allowed")
	ErrSubmissionInProgress = New(ErrCodeSubmissionInProgress, "submission is already in progress")
	ErrWorkflowClosed       = New(ErrCodeWorkflowClosed, "report has already been submitted")
	ErrInvalidTransition    = New(ErrCodeBadRequest, "status transition is not allowed")
	ErrStaleReport          = New(ErrCodeConflict, "report was changed by another update, reload it and try again")
	ErrUnauthorized         = New(ErrCodeUnauthorized, "authorization required")
	ErrInvalidCredentials   = New(ErrCodeUnauthorized, "invalid credentials")
)
