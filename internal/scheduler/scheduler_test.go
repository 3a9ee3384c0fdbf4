package scheduler

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/submission"
)

type nopSubmitter struct{}

func (nopSubmitter) Submit(context.Context, entity.Draft, string) (string, error) {
	return "", nil
}

type fakeStore struct {
	mu      sync.Mutex
	deleted []string
}

func (s *fakeStore) Save(_ context.Context, prefix, name, _ string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	return prefix + "/" + name, int64(len(data)), err
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) URL(key string) string { return "/media/" + key }

type countingCache struct{ calls int }

func (c *countingCache) PurgeExpired() int {
	c.calls++
	return 3
}

func TestExpiredDraftsJob_RemovesDraftFiles(t *testing.T) {
	sessions := submission.NewSessionStore(nopSubmitter{}, time.Second, 10*time.Millisecond)
	store := &fakeStore{}
	attachments := submission.NewAttachmentService(sessions, store)

	id, _ := sessions.Start()
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}
	_, err := attachments.Upload(context.Background(), id, []submission.Upload{{FileName: "pothole.png", Body: bytes.NewReader(png)}})
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	ExpiredDraftsJob(sessions, attachments).Run(context.Background())

	assert.Equal(t, 0, sessions.Len())
	assert.Equal(t, []string{id.String() + "/pothole.png"}, store.deleted)
}

func TestScheduler_RunJobRecoversPanic(t *testing.T) {
	s := New(context.Background(), time.Second)
	assert.NotPanics(t, func() {
		s.runJob(Job{Name: "boom", Run: func(context.Context) { panic("boom") }})
	})
}

func TestScheduler_RunsJobsOnSchedule(t *testing.T) {
	s := New(context.Background(), time.Second)
	cache := &countingCache{}
	done := make(chan struct{}, 1)

	require.NoError(t, s.Add("@every 1s", Job{Name: "cache", Run: func(ctx context.Context) {
		CacheJob(cache).Run(ctx)
		select {
		case done <- struct{}{}:
		default:
		}
	}}))
	s.Start()
	defer s.Stop()

	select {
	case <-done:
		assert.GreaterOrEqual(t, cache.calls, 1)
	case <-time.After(3 * time.Second):
		t.Fatal("задача не запустилась")
	}
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := New(context.Background(), time.Second)
	assert.Error(t, s.Add("not a schedule", Job{Name: "x", Run: func(context.Context) {}}))
}
