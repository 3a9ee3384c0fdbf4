package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/dto"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/response"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/report"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	maxIdempotencyKeyLen = 128
)

// ReportHandler — отправка отчёта одним запросом и публичный поиск по номеру.
type ReportHandler struct {
	createUC *report.CreateReportUseCase
	lookupUC *report.LookupReportUseCase
}

func NewReportHandler(createUC *report.CreateReportUseCase, lookupUC *report.LookupReportUseCase) *ReportHandler {
	return &ReportHandler{createUC: createUC, lookupUC: lookupUC}
}

// Create обрабатывает POST /api/reports. Повтор с тем же Idempotency-Key вернёт тот же номер.
func (h *ReportHandler) Create(c *gin.Context) {
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		response.BadRequest(c, "Idempotency-Key is too long")
		return
	}
	if key == "" {
		key = uuid.NewString()
	}

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	draft, err := req.ToDraft()
	if err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), report.CreateReportInput{
		Draft:          draft,
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header(IdempotencyKeyHeader, key)
	response.Created(c, dto.CreateReportResponse{ID: created.ID})
}

// Get обрабатывает GET /api/reports/:id. Регистр номера не важен.
func (h *ReportHandler) Get(c *gin.Context) {
	result, err := h.lookupUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Found {
		response.NotFound(c, "report not found, check the report ID and try again")
		return
	}

	response.Success(c, dto.ToReportView(result.Report))
}
