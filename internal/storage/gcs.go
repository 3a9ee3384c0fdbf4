package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore хранит вложения в бакете Google Cloud Storage.
type GCSStore struct {
	client         *storage.Client
	bucket         string
	maxUploadBytes int64
}

// NewGCSStore подключается к GCS и проверяет доступ к бакету.
// credentialsFile пустой — используются учётные данные окружения.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string, maxUploadMB int64) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось подключиться к GCS: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: бакет %s недоступен: %w", bucket, err)
	}

	return &GCSStore{client: client, bucket: bucket, maxUploadBytes: maxUploadMB * 1024 * 1024}, nil
}

func (s *GCSStore) Save(ctx context.Context, prefix, originalName, contentType string, r io.Reader) (string, int64, error) {
	key := objectKey(prefix, originalName, contentType)

	// Отмена контекста прерывает загрузку и не создаёт объект.
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(writeCtx)
	w.ContentType = contentType

	limited := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(w, &limited)
	if err != nil {
		cancel()
		_ = w.Close()
		return "", 0, fmt.Errorf("storage: не удалось загрузить файл в GCS: %w", err)
	}
	if written > s.maxUploadBytes {
		cancel()
		_ = w.Close()
		return "", 0, tooLarge(s.maxUploadBytes)
	}
	if err := w.Close(); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось завершить загрузку в GCS: %w", err)
	}

	return key, written, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("storage: не удалось удалить объект %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) URL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
