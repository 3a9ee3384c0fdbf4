package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/dto"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/response"
)

// MetaHandler отдаёт справочники для форм.
type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// Get обрабатывает GET /api/meta.
func (h *MetaHandler) Get(c *gin.Context) {
	meta := dto.MetaResponse{
		Categories:     valueobject.Categories(),
		Barangays:      valueobject.Barangays(),
		MaxAttachments: entity.MaxAttachments,
		DescriptionMin: entity.MinDescriptionLength,
		DescriptionMax: entity.MaxDescriptionLength,
	}
	for _, p := range valueobject.Priorities() {
		meta.Priorities = append(meta.Priorities, dto.OptionDTO{Value: string(p), Label: p.Label()})
	}
	for _, s := range valueobject.ReportStatuses() {
		meta.Statuses = append(meta.Statuses, dto.OptionDTO{
			Value: string(s),
			Label: s.Label(),
			Badge: string(valueobject.BadgeFor(string(s))),
		})
	}

	response.Success(c, meta)
}
