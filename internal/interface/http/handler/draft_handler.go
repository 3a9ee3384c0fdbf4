package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/dto"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/response"
	"github.com/ignatzorin/sanmateo-reports/internal/logger"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/submission"
)

// DraftHandler ведёт пошаговое заполнение отчёта.
type DraftHandler struct {
	sessions       *submission.SessionStore
	attachments    *submission.AttachmentService
	maxUploadBytes int64
}

func NewDraftHandler(sessions *submission.SessionStore, attachments *submission.AttachmentService, maxUploadMB int64) *DraftHandler {
	return &DraftHandler{
		sessions:       sessions,
		attachments:    attachments,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}
}

// Start обрабатывает POST /api/drafts.
func (h *DraftHandler) Start(c *gin.Context) {
	id, wf := h.sessions.Start()
	logger.WithFields(logrus.Fields{"session_id": id}).Debug("начат новый черновик")
	response.Created(c, dto.ToDraftResponse(id, wf.Snapshot()))
}

// Get обрабатывает GET /api/drafts/:id.
func (h *DraftHandler) Get(c *gin.Context) {
	id := sessionID(c)
	wf, err := h.sessions.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDraftResponse(id, wf.Snapshot()))
}

// UpdateDetails обрабатывает PUT /api/drafts/:id/details.
func (h *DraftHandler) UpdateDetails(c *gin.Context) {
	var req dto.DetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	h.apply(c, func(wf *submission.Workflow) error {
		if req.Category != nil {
			if err := wf.SelectCategory(*req.Category); err != nil {
				return err
			}
		}
		if req.Description != nil {
			return wf.SetDescription(*req.Description)
		}
		return nil
	})
}

// UpdateLocation обрабатывает PUT /api/drafts/:id/location.
// Невалидный запрос отклоняется целиком, черновик не меняется.
func (h *DraftHandler) UpdateLocation(c *gin.Context) {
	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	update, err := req.ToLocationUpdate()
	if err != nil {
		response.Error(c, err)
		return
	}

	h.apply(c, func(wf *submission.Workflow) error {
		return wf.UpdateLocation(update)
	})
}

// UpdateContact обрабатывает PUT /api/drafts/:id/contact.
func (h *DraftHandler) UpdateContact(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if fields := req.ValidateFormat(); len(fields) > 0 {
		response.Error(c, apperror.Validation("contact details are invalid", fields))
		return
	}

	reporter := req.ToReporter()
	h.apply(c, func(wf *submission.Workflow) error {
		return wf.SetReporterIdentity(reporter.Name, reporter.Phone, reporter.Email)
	})
}

// UploadAttachments обрабатывает POST /api/drafts/:id/attachments (multipart, поле files).
func (h *DraftHandler) UploadAttachments(c *gin.Context) {
	id := sessionID(c)

	// Общий лимит тела: все файлы пачки плюс запас на заголовки multipart.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes*entity.MaxAttachments+1<<20)
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "expected multipart form with files")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.BadRequest(c, "no files provided")
		return
	}
	if len(headers) > entity.MaxAttachments {
		response.Error(c, apperror.ErrAttachmentLimit)
		return
	}

	uploads := make([]submission.Upload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, "could not read the uploaded file")
			return
		}
		files = append(files, f)
		uploads = append(uploads, submission.Upload{FileName: fh.Filename, Body: f})
	}

	if _, err := h.attachments.Upload(c.Request.Context(), id, uploads); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, id)
}

// RemoveAttachment обрабатывает DELETE /api/drafts/:id/attachments/:index.
// Индекс вне диапазона — не ошибка, черновик не меняется.
func (h *DraftHandler) RemoveAttachment(c *gin.Context) {
	id := sessionID(c)
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "index must be a number")
		return
	}

	if _, err := h.attachments.Remove(c.Request.Context(), id, index); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, id)
}

// Advance обрабатывает POST /api/drafts/:id/advance. Незаполненный шаг — no-op, ошибки видны в ответе.
func (h *DraftHandler) Advance(c *gin.Context) {
	h.apply(c, func(wf *submission.Workflow) error {
		_, err := wf.Advance()
		return err
	})
}

// Retreat обрабатывает POST /api/drafts/:id/retreat.
func (h *DraftHandler) Retreat(c *gin.Context) {
	h.apply(c, func(wf *submission.Workflow) error {
		_, err := wf.Retreat()
		return err
	})
}

// Submit обрабатывает POST /api/drafts/:id/submit.
func (h *DraftHandler) Submit(c *gin.Context) {
	id := sessionID(c)
	wf, err := h.sessions.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	reportID, err := wf.Submit(c.Request.Context())
	if err != nil {
		logger.WithFields(logrus.Fields{"session_id": id, "error": err}).Warn("отправка черновика не удалась")
		response.Error(c, err)
		return
	}

	response.Created(c, dto.SubmitResponse{ID: reportID})
}

// Reset обрабатывает POST /api/drafts/:id/reset: новый пустой черновик в той же сессии.
func (h *DraftHandler) Reset(c *gin.Context) {
	id := sessionID(c)
	wf, err := h.attachments.Reset(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDraftResponse(id, wf.Snapshot()))
}

// Discard обрабатывает DELETE /api/drafts/:id.
func (h *DraftHandler) Discard(c *gin.Context) {
	wf := h.sessions.Discard(sessionID(c))
	if wf != nil {
		h.attachments.Cleanup(c.Request.Context(), wf)
	}
	c.Status(http.StatusNoContent)
}

func (h *DraftHandler) apply(c *gin.Context, fn func(wf *submission.Workflow) error) {
	id := sessionID(c)
	wf, err := h.sessions.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := fn(wf); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDraftResponse(id, wf.Snapshot()))
}

func (h *DraftHandler) respond(c *gin.Context, id uuid.UUID) {
	wf, err := h.sessions.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDraftResponse(id, wf.Snapshot()))
}
