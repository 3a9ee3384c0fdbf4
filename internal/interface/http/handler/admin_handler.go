package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sanmateo-reports/internal/export"
	"github.com/ignatzorin/sanmateo-reports/internal/geo"
	"github.com/ignatzorin/sanmateo-reports/internal/http/middleware"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/dto"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/response"
	"github.com/ignatzorin/sanmateo-reports/internal/logger"
	"github.com/ignatzorin/sanmateo-reports/internal/service"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/report"
)

// Предел выгрузки и карты, чтобы один запрос не выбирал всю базу.
const maxExportRows = 10000

type AdminHandler struct {
	auth        *service.AdminAuthService
	dashboardUC *report.DashboardUseCase
	listUC      *report.ListReportsUseCase
	updateUC    *report.UpdateStatusUseCase
	now         func() time.Time
}

func NewAdminHandler(
	auth *service.AdminAuthService,
	dashboardUC *report.DashboardUseCase,
	listUC *report.ListReportsUseCase,
	updateUC *report.UpdateStatusUseCase,
) *AdminHandler {
	return &AdminHandler{
		auth:        auth,
		dashboardUC: dashboardUC,
		listUC:      listUC,
		updateUC:    updateUC,
		now:         time.Now,
	}
}

// Login обрабатывает POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.LoginResponse{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt,
	})
}

// Dashboard обрабатывает GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboardUC.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDashboardResponse(d))
}

// List обрабатывает GET /api/admin/reports?status=&category=&barangay=&limit=&offset=.
func (h *AdminHandler) List(c *gin.Context) {
	out, err := h.listUC.Execute(c.Request.Context(), listInput(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, dto.ToAdminReportResponses(out.Reports), out.Total, out.Limit, out.Offset)
}

// UpdateStatus обрабатывает PUT /api/admin/reports/:id/status.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.updateUC.Execute(c.Request.Context(), report.UpdateStatusInput{
		ReportID:   c.Param("id"),
		Status:     req.Status,
		Message:    req.Message,
		AssignedTo: req.AssignedTo,
		Priority:   req.Priority,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"report_id": updated.ID,
		"status":    updated.Status,
		"admin":     c.GetString(middleware.ContextAdminKey),
	}).Info("администратор изменил статус отчёта")
	response.Success(c, dto.ToAdminReportResponse(updated))
}

// Export обрабатывает GET /api/admin/reports/export: XLSX по тем же фильтрам, что и список.
func (h *AdminHandler) Export(c *gin.Context) {
	reports, err := h.listUC.ListAll(c.Request.Context(), listInput(c), maxExportRows)
	if err != nil {
		response.Error(c, err)
		return
	}

	now := h.now()
	data, err := export.ReportsXLSX(reports, now)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(now)+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}

// Map обрабатывает GET /api/admin/reports/map: GeoJSON FeatureCollection.
func (h *AdminHandler) Map(c *gin.Context) {
	reports, err := h.listUC.ListAll(c.Request.Context(), listInput(c), maxExportRows)
	if err != nil {
		response.Error(c, err)
		return
	}

	fc := geo.ReportsToFeatureCollection(reports)
	raw, err := fc.MarshalJSON()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", raw)
}

func listInput(c *gin.Context) report.ListReportsInput {
	return report.ListReportsInput{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Barangay: c.Query("barangay"),
		Limit:    parseIntQuery(c, "limit", 0),
		Offset:   parseIntQuery(c, "offset", 0),
	}
}
