package submission

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

type Step int

const (
	StepIssueDetails Step = 1
	StepLocation     Step = 2
	StepContactInfo  Step = 3
)

type State string

const (
	StateIssueDetails State = "step1_issue_details"
	StateLocation     State = "step2_location"
	StateContactInfo  State = "step3_contact_info"
	StateSubmitting   State = "submitting"
	StateSubmitted    State = "submitted"
)

// ReportSubmitter — асинхронная граница: сохраняет готовый черновик и возвращает идентификатор.
type ReportSubmitter interface {
	Submit(ctx context.Context, draft entity.Draft, idempotencyKey string) (string, error)
}

// Workflow — конечный автомат подачи отчёта. Владеет черновиком и курсором шага;
// методы ниже — единственный способ его изменить.
type Workflow struct {
	mu sync.Mutex

	draft          entity.Draft
	step           Step
	submitting     bool
	submitted      bool
	reportID       string
	lastError      string
	idempotencyKey string

	submitter ReportSubmitter
	timeout   time.Duration
}

// View — снимок состояния автомата для ответа клиенту.
type View struct {
	State          State
	Step           Step
	Draft          entity.Draft
	Errors         []apperror.FieldError
	CanAdvance     bool
	ReportID       string
	LastError      string
	IdempotencyKey string
}

// NewWorkflow создаёт автомат на шаге 1 с пустым черновиком.
func NewWorkflow(submitter ReportSubmitter, timeout time.Duration) *Workflow {
	return &Workflow{
		step:           StepIssueDetails,
		submitter:      submitter,
		timeout:        timeout,
		idempotencyKey: uuid.NewString(),
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Workflow) stateLocked() State {
	switch {
	case w.submitted:
		return StateSubmitted
	case w.submitting:
		return StateSubmitting
	}
	switch w.step {
	case StepLocation:
		return StateLocation
	case StepContactInfo:
		return StateContactInfo
	default:
		return StateIssueDetails
	}
}

// mutable проверяет, что черновик ещё можно менять.
func (w *Workflow) mutable() error {
	if w.submitted {
		return apperror.ErrWorkflowClosed
	}
	if w.submitting {
		return apperror.ErrSubmissionInProgress
	}
	return nil
}

func (w *Workflow) SelectCategory(value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	category, err := valueobject.NewCategory(value)
	if err != nil {
		return err
	}
	w.draft.Category = category
	return nil
}

// SetDescription сохраняет текст; всё сверх MaxDescriptionLength молча отбрасывается.
func (w *Workflow) SetDescription(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	w.draft.Description = entity.TruncateDescription(text)
	return nil
}

// AttachmentCount возвращает текущее число вложений.
func (w *Workflow) AttachmentCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.draft.Attachments)
}

// AddAttachments добавляет пачку целиком или не добавляет ничего.
func (w *Workflow) AddAttachments(items []entity.Attachment) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	if len(w.draft.Attachments)+len(items) > entity.MaxAttachments {
		return apperror.ErrAttachmentLimit
	}
	w.draft.Attachments = append(w.draft.Attachments, items...)
	return nil
}

// RemoveAttachment удаляет вложение по индексу. Индекс вне диапазона — no-op (ok=false).
func (w *Workflow) RemoveAttachment(index int) (entity.Attachment, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return entity.Attachment{}, false, err
	}
	if index < 0 || index >= len(w.draft.Attachments) {
		return entity.Attachment{}, false, nil
	}

	removed := w.draft.Attachments[index]
	kept := make([]entity.Attachment, 0, len(w.draft.Attachments)-1)
	kept = append(kept, w.draft.Attachments[:index]...)
	kept = append(kept, w.draft.Attachments[index+1:]...)
	w.draft.Attachments = kept
	return removed, true, nil
}

// SelectLocation задаёт обе координаты разом.
func (w *Workflow) SelectLocation(lat, lng float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	coords, err := valueobject.NewCoordinates(lat, lng)
	if err != nil {
		return err
	}
	w.draft.Coordinates = &coords
	return nil
}

// ClearLocation сбрасывает обе координаты.
func (w *Workflow) ClearLocation() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	w.draft.Coordinates = nil
	return nil
}

// LocationUpdate — изменения шага 2. nil-поля не трогаются; метка снимается
// только при ClearCoordinates.
type LocationUpdate struct {
	Barangay         *string
	StreetAddress    *string
	Coordinates      *valueobject.Coordinates
	ClearCoordinates bool
}

// UpdateLocation применяет изменения шага 2 целиком или не применяет ничего.
func (w *Workflow) UpdateLocation(u LocationUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	if u.Barangay != nil && *u.Barangay != "" && !valueobject.IsKnownBarangay(*u.Barangay) {
		return apperror.New(apperror.ErrCodeValidation, "unknown barangay")
	}

	if u.Barangay != nil {
		w.draft.Barangay = *u.Barangay
	}
	if u.StreetAddress != nil {
		w.draft.StreetAddress = *u.StreetAddress
	}
	switch {
	case u.Coordinates != nil:
		coords := *u.Coordinates
		w.draft.Coordinates = &coords
	case u.ClearCoordinates:
		w.draft.Coordinates = nil
	}
	return nil
}

func (w *Workflow) SetBarangay(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	if name != "" && !valueobject.IsKnownBarangay(name) {
		return apperror.New(apperror.ErrCodeValidation, "unknown barangay")
	}
	w.draft.Barangay = name
	return nil
}

func (w *Workflow) SetStreetAddress(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	w.draft.StreetAddress = text
	return nil
}

func (w *Workflow) SetReporterIdentity(name, phone, email string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return err
	}
	w.draft.Reporter = entity.Reporter{Name: name, Phone: phone, Email: email}
	return nil
}

// Validate возвращает ошибки полей для шага. Побочных эффектов нет.
func (w *Workflow) Validate(step Step) []apperror.FieldError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.ValidateStep(int(step))
}

// CanAdvance — чистый предикат завершённости шага.
func (w *Workflow) CanAdvance(step Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.IsStepComplete(int(step))
}

// Advance сдвигает курсор вперёд, если текущий шаг заполнен. Иначе no-op.
func (w *Workflow) Advance() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return w.step, err
	}
	if w.step < StepContactInfo && w.draft.IsStepComplete(int(w.step)) {
		w.step++
	}
	return w.step, nil
}

// Retreat сдвигает курсор назад, не ниже шага 1.
func (w *Workflow) Retreat() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutable(); err != nil {
		return w.step, err
	}
	if w.step > StepIssueDetails {
		w.step--
	}
	return w.step, nil
}

// Submit отправляет черновик через ReportSubmitter. Повторный вызов, пока первый
// не завершился, получает ErrSubmissionInProgress. При ошибке автомат остаётся
// на шаге 3 с нетронутым черновиком.
func (w *Workflow) Submit(ctx context.Context) (string, error) {
	w.mu.Lock()
	if err := w.mutable(); err != nil {
		w.mu.Unlock()
		return "", err
	}
	if w.step != StepContactInfo {
		w.mu.Unlock()
		return "", apperror.New(apperror.ErrCodeBadRequest, "complete all steps before submitting")
	}
	if errs := w.draft.ValidateStep(int(StepContactInfo)); len(errs) > 0 {
		w.mu.Unlock()
		return "", apperror.Validation("contact information is incomplete", errs)
	}

	w.submitting = true
	w.lastError = ""
	draft := w.draft.Clone()
	key := w.idempotencyKey
	w.mu.Unlock()

	callCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	id, err := w.submitter.Submit(callCtx, draft, key)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err != nil {
		w.step = StepContactInfo
		failure := apperror.Wrap(err, apperror.ErrCodeSubmissionFailed, "could not submit the report, please try again")
		w.lastError = failure.Message
		return "", failure
	}

	w.submitted = true
	w.reportID = id
	return id, nil
}

// Reset отбрасывает черновик и начинает заново с шага 1.
// Возвращает вложения неотправленного черновика: их файлы больше никому не нужны.
func (w *Workflow) Reset() ([]entity.Attachment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return nil, apperror.ErrSubmissionInProgress
	}
	var orphaned []entity.Attachment
	if !w.submitted {
		orphaned = w.draft.Attachments
	}
	w.draft = entity.Draft{}
	w.step = StepIssueDetails
	w.submitted = false
	w.reportID = ""
	w.lastError = ""
	w.idempotencyKey = uuid.NewString()
	return orphaned, nil
}

// Snapshot возвращает копию состояния.
func (w *Workflow) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	errs := w.draft.ValidateStep(int(w.step))
	return View{
		State:          w.stateLocked(),
		Step:           w.step,
		Draft:          w.draft.Clone(),
		Errors:         errs,
		CanAdvance:     len(errs) == 0,
		ReportID:       w.reportID,
		LastError:      w.lastError,
		IdempotencyKey: w.idempotencyKey,
	}
}
