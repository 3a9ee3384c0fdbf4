package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
)

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
}

// objectKey строит ключ вида <prefix>/<uuid>_<nano>.<ext>. Имя файла клиента в ключ не попадает.
func objectKey(prefix, originalName, contentType string) string {
	ext, ok := extensions[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	}
	name := fmt.Sprintf("%s_%d%s", uuid.NewString(), time.Now().UnixNano(), ext)
	if prefix == "" {
		return name
	}
	return sanitizeSegment(prefix) + "/" + name
}

// sanitizeSegment удаляет потенциально опасные символы.
func sanitizeSegment(s string) string {
	s = strings.ReplaceAll(s, "..", "")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		s = "misc"
	}
	return s
}

func tooLarge(limit int64) error {
	return apperror.New(apperror.ErrCodeBadRequest,
		fmt.Sprintf("file exceeds the upload limit of %d MB", limit/(1024*1024)))
}
