package submission_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/submission"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}

type memoryStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	failOn  int
	saves   int
	deleted []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string][]byte)}
}

func (s *memoryStore) Save(ctx context.Context, prefix, originalName, contentType string, r io.Reader) (string, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failOn > 0 && s.saves == s.failOn {
		return "", 0, errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	key := fmt.Sprintf("%s/%d_%s", prefix, s.saves, originalName)
	s.files[key] = data
	return key, int64(len(data)), nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memoryStore) URL(key string) string {
	return "/media/" + key
}

func pngUploads(n int) []submission.Upload {
	out := make([]submission.Upload, n)
	for i := range out {
		out[i] = submission.Upload{
			FileName: fmt.Sprintf("photo%d.png", i),
			Body:     bytes.NewReader(append(append([]byte{}, pngHeader...), byte(i))),
		}
	}
	return out
}

func TestAttachmentService_Upload(t *testing.T) {
	sessions := submission.NewSessionStore(&mockSubmitter{}, time.Second, time.Hour)
	store := newMemoryStore()
	svc := submission.NewAttachmentService(sessions, store)
	id, wf := sessions.Start()

	atts, err := svc.Upload(context.Background(), id, pngUploads(2))
	require.NoError(t, err)
	require.Len(t, atts, 2)
	assert.Equal(t, "image/png", atts[0].ContentType)
	assert.Equal(t, int64(len(pngHeader)+1), atts[0].Size)
	assert.Equal(t, "/media/"+atts[0].Key, atts[0].URL)
	assert.Equal(t, 2, wf.AttachmentCount())
	assert.Len(t, store.files, 2)
}

func TestAttachmentService_UploadOverLimitStoresNothing(t *testing.T) {
	sessions := submission.NewSessionStore(&mockSubmitter{}, time.Second, time.Hour)
	store := newMemoryStore()
	svc := submission.NewAttachmentService(sessions, store)
	id, wf := sessions.Start()

	_, err := svc.Upload(context.Background(), id, pngUploads(4))
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), id, pngUploads(2))
	assert.ErrorIs(t, err, apperror.ErrAttachmentLimit)
	assert.Equal(t, 4, wf.AttachmentCount())
	assert.Equal(t, 4, store.saves)
}

func TestAttachmentService_UploadRollsBackOnStoreFailure(t *testing.T) {
	sessions := submission.NewSessionStore(&mockSubmitter{}, time.Second, time.Hour)
	store := newMemoryStore()
	store.failOn = 3
	svc := submission.NewAttachmentService(sessions, store)
	id, wf := sessions.Start()

	_, err := svc.Upload(context.Background(), id, pngUploads(3))
	require.Error(t, err)
	assert.Equal(t, 0, wf.AttachmentCount())
	assert.Empty(t, store.files)
	assert.Len(t, store.deleted, 2)
}

func TestAttachmentService_RejectsUnknownMedia(t *testing.T) {
	sessions := submission.NewSessionStore(&mockSubmitter{}, time.Second, time.Hour)
	svc := submission.NewAttachmentService(sessions, newMemoryStore())
	id, _ := sessions.Start()

	_, err := svc.Upload(context.Background(), id, []submission.Upload{
		{FileName: "notes.txt", Body: bytes.NewReader([]byte("just some plain text"))},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeUnsupportedMedia, apperror.CodeOf(err))
}

func TestAttachmentService_Remove(t *testing.T) {
	sessions := submission.NewSessionStore(&mockSubmitter{}, time.Second, time.Hour)
	store := newMemoryStore()
	svc := submission.NewAttachmentService(sessions, store)
	id, wf := sessions.Start()

	atts, err := svc.Upload(context.Background(), id, pngUploads(2))
	require.NoError(t, err)

	removed, err := svc.Remove(context.Background(), id, 0)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 1, wf.AttachmentCount())
	assert.Equal(t, []string{atts[0].Key}, store.deleted)

	removed, err = svc.Remove(context.Background(), id, 5)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAttachmentService_ResetDeletesDraftFiles(t *testing.T) {
	sessions := submission.NewSessionStore(&mockSubmitter{}, time.Second, time.Hour)
	store := newMemoryStore()
	svc := submission.NewAttachmentService(sessions, store)
	id, _ := sessions.Start()

	_, err := svc.Upload(context.Background(), id, pngUploads(3))
	require.NoError(t, err)

	wf, err := svc.Reset(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, wf.AttachmentCount())
	assert.Empty(t, store.files)
	assert.Len(t, store.deleted, 3)
}

func TestAttachmentService_UnknownSession(t *testing.T) {
	sessions := submission.NewSessionStore(&mockSubmitter{}, time.Second, time.Hour)
	svc := submission.NewAttachmentService(sessions, newMemoryStore())

	_, err := svc.Upload(context.Background(), uuid.New(), pngUploads(1))
	assert.ErrorIs(t, err, apperror.ErrDraftNotFound)
}

func TestSessionStore_PurgeExpired(t *testing.T) {
	sessions := submission.NewSessionStore(&mockSubmitter{}, time.Second, 10*time.Millisecond)
	id, _ := sessions.Start()
	sessions.Start()
	require.Equal(t, 2, sessions.Len())

	time.Sleep(30 * time.Millisecond)
	purged := sessions.PurgeExpired()
	assert.Len(t, purged, 2)
	assert.Equal(t, 0, sessions.Len())

	_, err := sessions.Get(id)
	assert.ErrorIs(t, err, apperror.ErrDraftNotFound)
}

func TestSessionStore_Discard(t *testing.T) {
	sessions := submission.NewSessionStore(&mockSubmitter{}, time.Second, time.Hour)
	id, wf := sessions.Start()

	got, err := sessions.Get(id)
	require.NoError(t, err)
	assert.Same(t, wf, got)

	assert.Same(t, wf, sessions.Discard(id))
	assert.Nil(t, sessions.Discard(id))
}
