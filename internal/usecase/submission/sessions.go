package submission

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

type session struct {
	workflow *Workflow
	lastSeen time.Time
}

// SessionStore держит по одному Workflow на сессию подачи.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	submitter ReportSubmitter
	timeout   time.Duration
	ttl       time.Duration
	now       func() time.Time
}

// NewSessionStore создаёт хранилище сессий. ttl — время простоя до удаления.
func NewSessionStore(submitter ReportSubmitter, submitTimeout, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions:  make(map[uuid.UUID]*session),
		submitter: submitter,
		timeout:   submitTimeout,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Start открывает новую сессию на шаге 1.
func (s *SessionStore) Start() (uuid.UUID, *Workflow) {
	id := uuid.New()
	wf := NewWorkflow(s.submitter, s.timeout)

	s.mu.Lock()
	s.sessions[id] = &session{workflow: wf, lastSeen: s.now()}
	s.mu.Unlock()

	return id, wf
}

// Get возвращает автомат сессии и продлевает её жизнь.
func (s *SessionStore) Get(id uuid.UUID) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		delete(s.sessions, id)
		return nil, apperror.ErrDraftNotFound
	}
	sess.lastSeen = s.now()
	return sess.workflow, nil
}

// Discard удаляет сессию. Отсутствующая сессия — не ошибка.
func (s *SessionStore) Discard(id uuid.UUID) *Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	delete(s.sessions, id)
	return sess.workflow
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PurgeExpired удаляет сессии, простоявшие дольше ttl, и возвращает их автоматы,
// чтобы вызывающий мог прибрать вложения.
func (s *SessionStore) PurgeExpired() []*Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged []*Workflow
	for id, sess := range s.sessions {
		if s.expired(sess) {
			purged = append(purged, sess.workflow)
			delete(s.sessions, id)
		}
	}
	return purged
}

func (s *SessionStore) expired(sess *session) bool {
	if s.ttl <= 0 {
		return false
	}
	// Идущую отправку не трогаем.
	if sess.workflow.State() == StateSubmitting {
		return false
	}
	return s.now().Sub(sess.lastSeen) > s.ttl
}
