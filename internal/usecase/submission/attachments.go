package submission

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/logger"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

// Разрешённые типы вложений: фото и короткие видео.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
}

const sniffLength = 512

// AttachmentStore — хранилище файлов (локальный диск или GCS).
type AttachmentStore interface {
	Save(ctx context.Context, prefix, originalName, contentType string, r io.Reader) (key string, size int64, err error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Upload — один файл из multipart-запроса.
type Upload struct {
	FileName string
	Body     io.Reader
}

// AttachmentService загружает вложения черновика и удаляет их.
type AttachmentService struct {
	sessions *SessionStore
	store    AttachmentStore
	now      func() time.Time
}

func NewAttachmentService(sessions *SessionStore, store AttachmentStore) *AttachmentService {
	return &AttachmentService{sessions: sessions, store: store, now: time.Now}
}

// Upload сохраняет пачку файлов и добавляет их в черновик целиком.
// Если пачка не помещается в лимит, ничего не сохраняется.
func (s *AttachmentService) Upload(ctx context.Context, sessionID uuid.UUID, uploads []Upload) ([]entity.Attachment, error) {
	wf, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "no files provided")
	}
	if wf.AttachmentCount()+len(uploads) > entity.MaxAttachments {
		return nil, apperror.ErrAttachmentLimit
	}

	stored := make([]entity.Attachment, 0, len(uploads))
	for _, up := range uploads {
		att, err := s.saveOne(ctx, sessionID, up)
		if err != nil {
			s.rollback(stored)
			return nil, err
		}
		stored = append(stored, att)
	}

	// Между проверкой и добавлением могла пройти параллельная загрузка.
	if err := wf.AddAttachments(stored); err != nil {
		s.rollback(stored)
		return nil, err
	}
	return stored, nil
}

// Remove убирает вложение из черновика и из хранилища.
func (s *AttachmentService) Remove(ctx context.Context, sessionID uuid.UUID, index int) (bool, error) {
	wf, err := s.sessions.Get(sessionID)
	if err != nil {
		return false, err
	}

	removed, ok, err := wf.RemoveAttachment(index)
	if err != nil || !ok {
		return false, err
	}
	if removed.Key != "" {
		if err := s.store.Delete(ctx, removed.Key); err != nil {
			logger.WithFields(logrus.Fields{"key": removed.Key, "error": err}).Warn("не удалось удалить файл вложения")
		}
	}
	return true, nil
}

// Cleanup удаляет файлы брошенного черновика.
func (s *AttachmentService) Cleanup(ctx context.Context, wf *Workflow) {
	view := wf.Snapshot()
	if view.State == StateSubmitted {
		return
	}
	s.deleteFiles(ctx, view.Draft.Attachments)
}

// Reset начинает черновик сессии заново и удаляет файлы прежнего.
func (s *AttachmentService) Reset(ctx context.Context, sessionID uuid.UUID) (*Workflow, error) {
	wf, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	orphaned, err := wf.Reset()
	if err != nil {
		return nil, err
	}
	s.deleteFiles(ctx, orphaned)
	return wf, nil
}

func (s *AttachmentService) deleteFiles(ctx context.Context, items []entity.Attachment) {
	for _, att := range items {
		if err := s.store.Delete(ctx, att.Key); err != nil {
			logger.WithFields(logrus.Fields{"key": att.Key, "error": err}).Warn("не удалось удалить файл брошенного черновика")
		}
	}
}

func (s *AttachmentService) saveOne(ctx context.Context, sessionID uuid.UUID, up Upload) (entity.Attachment, error) {
	head := make([]byte, sniffLength)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return entity.Attachment{}, apperror.Wrap(err, apperror.ErrCodeBadRequest, "could not read the uploaded file")
	}
	if n == 0 {
		return entity.Attachment{}, apperror.New(apperror.ErrCodeBadRequest, "file must not be empty")
	}
	head = head[:n]

	contentType, err := DetectMediaType(head)
	if err != nil {
		return entity.Attachment{}, err
	}

	body := io.MultiReader(bytes.NewReader(head), up.Body)
	key, size, err := s.store.Save(ctx, sessionID.String(), up.FileName, contentType, body)
	if err != nil {
		if apperror.CodeOf(err) != apperror.ErrCodeInternal {
			return entity.Attachment{}, err
		}
		return entity.Attachment{}, apperror.Wrap(err, apperror.ErrCodeInternal, "could not store the attachment")
	}

	return entity.Attachment{
		ID:          uuid.New(),
		Key:         key,
		FileName:    up.FileName,
		ContentType: contentType,
		Size:        size,
		URL:         s.store.URL(key),
		CreatedAt:   s.now(),
	}, nil
}

func (s *AttachmentService) rollback(stored []entity.Attachment) {
	// Контекст запроса мог быть уже отменён, поэтому чистим с фоновым.
	ctx := context.Background()
	for _, att := range stored {
		if err := s.store.Delete(ctx, att.Key); err != nil {
			logger.WithFields(logrus.Fields{"key": att.Key, "error": err}).Warn("откат загрузки: файл не удалён")
		}
	}
}

// DetectMediaType определяет тип по магическим байтам и проверяет, что он разрешён.
func DetectMediaType(head []byte) (string, error) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", apperror.New(apperror.ErrCodeUnsupportedMedia, "only photos and videos can be attached")
	}
	if !allowedMediaTypes[kind.MIME.Value] {
		return "", apperror.New(apperror.ErrCodeUnsupportedMedia,
			fmt.Sprintf("unsupported file type %s", kind.MIME.Value))
	}
	return kind.MIME.Value, nil
}
