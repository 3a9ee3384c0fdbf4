package submission_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/submission"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, draft entity.Draft, idempotencyKey string) (string, error) {
	args := m.Called(ctx, draft, idempotencyKey)
	return args.String(0), args.Error(1)
}

// blockingSubmitter держит вызов, пока тест не отпустит release.
type blockingSubmitter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSubmitter) Submit(ctx context.Context, draft entity.Draft, idempotencyKey string) (string, error) {
	close(b.started)
	select {
	case <-b.release:
		return "SM-BLOCK-0001", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func fillToStep3(t *testing.T, wf *submission.Workflow) {
	t.Helper()
	require.NoError(t, wf.SelectCategory("roads"))
	require.NoError(t, wf.SetDescription("Large pothole blocking the road"))
	step, err := wf.Advance()
	require.NoError(t, err)
	require.Equal(t, submission.StepLocation, step)

	require.NoError(t, wf.SetBarangay("Guinayang"))
	require.NoError(t, wf.SelectLocation(14.6978, 121.1203))
	step, err = wf.Advance()
	require.NoError(t, err)
	require.Equal(t, submission.StepContactInfo, step)

	require.NoError(t, wf.SetReporterIdentity("Juan Dela Cruz", "", "juan@test.com"))
}

func TestWorkflow_AdvanceBlockedUntilStepComplete(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)

	step, err := wf.Advance()
	require.NoError(t, err)
	assert.Equal(t, submission.StepIssueDetails, step)
	assert.Equal(t, submission.StateIssueDetails, wf.State())

	require.NoError(t, wf.SelectCategory("roads"))
	require.NoError(t, wf.SetDescription("Large pothole blocking the road"))

	step, err = wf.Advance()
	require.NoError(t, err)
	assert.Equal(t, submission.StepLocation, step)
	assert.Equal(t, submission.StateLocation, wf.State())
}

func TestWorkflow_ValidateReportsFieldErrors(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)
	require.NoError(t, wf.SetDescription("too short"))

	errs := wf.Validate(submission.StepIssueDetails)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"category", "description"}, fields)
	assert.False(t, wf.CanAdvance(submission.StepIssueDetails))
}

func TestWorkflow_EmailAloneSatisfiesContactStep(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)
	fillToStep3(t, wf)

	assert.True(t, wf.CanAdvance(submission.StepContactInfo))
}

func TestWorkflow_RetreatIsBounded(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)

	step, err := wf.Retreat()
	require.NoError(t, err)
	assert.Equal(t, submission.StepIssueDetails, step)

	fillToStep3(t, wf)
	step, err = wf.Advance()
	require.NoError(t, err)
	assert.Equal(t, submission.StepContactInfo, step)

	step, err = wf.Retreat()
	require.NoError(t, err)
	assert.Equal(t, submission.StepLocation, step)
}

func TestWorkflow_SetDescriptionTruncates(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)
	long := make([]rune, 600)
	for i := range long {
		long[i] = 'ñ'
	}
	require.NoError(t, wf.SetDescription(string(long)))

	view := wf.Snapshot()
	assert.Len(t, []rune(view.Draft.Description), entity.MaxDescriptionLength)
}

func TestWorkflow_AddAttachmentsIsAtomic(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)

	require.NoError(t, wf.AddAttachments(make([]entity.Attachment, 3)))
	err := wf.AddAttachments(make([]entity.Attachment, 3))
	assert.ErrorIs(t, err, apperror.ErrAttachmentLimit)
	assert.Equal(t, 3, wf.AttachmentCount())

	require.NoError(t, wf.AddAttachments(make([]entity.Attachment, 2)))
	assert.Equal(t, entity.MaxAttachments, wf.AttachmentCount())
}

func TestWorkflow_RemoveAttachment(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)
	require.NoError(t, wf.AddAttachments([]entity.Attachment{{Key: "a"}, {Key: "b"}, {Key: "c"}}))

	removed, ok, err := wf.RemoveAttachment(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", removed.Key)

	_, ok, err = wf.RemoveAttachment(7)
	require.NoError(t, err)
	assert.False(t, ok)

	view := wf.Snapshot()
	require.Len(t, view.Draft.Attachments, 2)
	assert.Equal(t, "a", view.Draft.Attachments[0].Key)
	assert.Equal(t, "c", view.Draft.Attachments[1].Key)
}

func TestWorkflow_ClearLocationBlocksStep2(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)
	require.NoError(t, wf.SetBarangay("Banaba"))
	require.NoError(t, wf.SelectLocation(14.7, 121.1))
	assert.True(t, wf.CanAdvance(submission.StepLocation))

	require.NoError(t, wf.ClearLocation())
	assert.False(t, wf.CanAdvance(submission.StepLocation))
	assert.Nil(t, wf.Snapshot().Draft.Coordinates)
}

func TestWorkflow_UpdateLocationIsAllOrNothing(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)
	barangay, street := "Banaba", "Rizal Ave"
	coords := valueobject.Coordinates{Latitude: 14.7, Longitude: 121.1}
	require.NoError(t, wf.UpdateLocation(submission.LocationUpdate{
		Barangay:      &barangay,
		StreetAddress: &street,
		Coordinates:   &coords,
	}))
	assert.True(t, wf.CanAdvance(submission.StepLocation))

	unknown, otherStreet := "Atlantis", "Luna St"
	err := wf.UpdateLocation(submission.LocationUpdate{Barangay: &unknown, StreetAddress: &otherStreet, ClearCoordinates: true})
	assert.True(t, apperror.IsValidation(err))
	draft := wf.Snapshot().Draft
	assert.Equal(t, "Banaba", draft.Barangay)
	assert.Equal(t, "Rizal Ave", draft.StreetAddress)
	require.NotNil(t, draft.Coordinates)

	// Без координат в изменении метка остаётся.
	malanday := "Malanday"
	require.NoError(t, wf.UpdateLocation(submission.LocationUpdate{Barangay: &malanday}))
	draft = wf.Snapshot().Draft
	assert.Equal(t, "Malanday", draft.Barangay)
	require.NotNil(t, draft.Coordinates)
	assert.Equal(t, 14.7, draft.Coordinates.Latitude)

	require.NoError(t, wf.UpdateLocation(submission.LocationUpdate{ClearCoordinates: true}))
	assert.Nil(t, wf.Snapshot().Draft.Coordinates)
	assert.Equal(t, "Malanday", wf.Snapshot().Draft.Barangay)
}

func TestWorkflow_SubmitSuccess(t *testing.T) {
	sub := &mockSubmitter{}
	wf := submission.NewWorkflow(sub, time.Second)
	fillToStep3(t, wf)
	key := wf.Snapshot().IdempotencyKey

	sub.On("Submit", mock.Anything, mock.AnythingOfType("entity.Draft"), key).Return("SM-M60GHM9S-AB12", nil).Once()

	id, err := wf.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SM-M60GHM9S-AB12", id)
	assert.Equal(t, submission.StateSubmitted, wf.State())

	assert.ErrorIs(t, wf.SetDescription("another description here"), apperror.ErrWorkflowClosed)
	_, err = wf.Submit(context.Background())
	assert.ErrorIs(t, err, apperror.ErrWorkflowClosed)
	sub.AssertExpectations(t)
}

func TestWorkflow_SubmitFailureReturnsToStep3(t *testing.T) {
	sub := &mockSubmitter{}
	wf := submission.NewWorkflow(sub, time.Second)
	fillToStep3(t, wf)
	before := wf.Snapshot()

	sub.On("Submit", mock.Anything, mock.Anything, before.IdempotencyKey).Return("", errors.New("connection refused")).Once()

	_, err := wf.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeSubmissionFailed, apperror.CodeOf(err))

	after := wf.Snapshot()
	assert.Equal(t, submission.StateContactInfo, after.State)
	assert.Equal(t, before.Draft, after.Draft)
	assert.NotEmpty(t, after.LastError)
	assert.Equal(t, before.IdempotencyKey, after.IdempotencyKey)

	// Повтор с тем же ключом проходит.
	sub.On("Submit", mock.Anything, mock.Anything, before.IdempotencyKey).Return("SM-RETRY-0001", nil).Once()
	id, err := wf.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SM-RETRY-0001", id)
	assert.Empty(t, wf.Snapshot().LastError)
}

func TestWorkflow_SubmitRequiresStep3(t *testing.T) {
	wf := submission.NewWorkflow(&mockSubmitter{}, time.Second)

	_, err := wf.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, submission.StateIssueDetails, wf.State())
}

func TestWorkflow_SubmitInFlightGuard(t *testing.T) {
	sub := &blockingSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	wf := submission.NewWorkflow(sub, 5*time.Second)
	fillToStep3(t, wf)

	done := make(chan error, 1)
	go func() {
		_, err := wf.Submit(context.Background())
		done <- err
	}()
	<-sub.started

	assert.Equal(t, submission.StateSubmitting, wf.State())
	_, err := wf.Submit(context.Background())
	assert.ErrorIs(t, err, apperror.ErrSubmissionInProgress)
	assert.ErrorIs(t, wf.SetReporterIdentity("X", "1", ""), apperror.ErrSubmissionInProgress)
	_, err = wf.Reset()
	assert.ErrorIs(t, err, apperror.ErrSubmissionInProgress)

	close(sub.release)
	require.NoError(t, <-done)
	assert.Equal(t, submission.StateSubmitted, wf.State())
}

func TestWorkflow_SubmitTimeout(t *testing.T) {
	sub := &blockingSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	wf := submission.NewWorkflow(sub, 20*time.Millisecond)
	fillToStep3(t, wf)

	_, err := wf.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeSubmissionFailed, apperror.CodeOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, submission.StateContactInfo, wf.State())
}

func TestWorkflow_ResetStartsOver(t *testing.T) {
	sub := &mockSubmitter{}
	wf := submission.NewWorkflow(sub, time.Second)
	fillToStep3(t, wf)
	sub.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return("SM-DONE-0001", nil).Once()
	_, err := wf.Submit(context.Background())
	require.NoError(t, err)
	oldKey := wf.Snapshot().IdempotencyKey

	_, err = wf.Reset()
	require.NoError(t, err)
	view := wf.Snapshot()
	assert.Equal(t, submission.StateIssueDetails, view.State)
	assert.Equal(t, entity.Draft{}, view.Draft)
	assert.Empty(t, view.ReportID)
	assert.NotEqual(t, oldKey, view.IdempotencyKey)
}
