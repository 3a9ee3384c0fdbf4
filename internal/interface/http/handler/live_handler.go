package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/response"
	"github.com/ignatzorin/sanmateo-reports/internal/logger"
	"github.com/ignatzorin/sanmateo-reports/internal/service"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/report"
	"github.com/ignatzorin/sanmateo-reports/internal/ws"
)

// LiveHandler отвечает за установку WebSocket соединений живого отслеживания.
type LiveHandler struct {
	ctx      context.Context
	hub      *ws.Hub
	lookupUC *report.LookupReportUseCase
	auth     *service.AdminAuthService
	upgrader websocket.Upgrader
}

// NewLiveHandler создаёт хэндлер. ctx живёт до остановки сервера и закрывает соединения при shutdown.
func NewLiveHandler(ctx context.Context, hub *ws.Hub, lookupUC *report.LookupReportUseCase, auth *service.AdminAuthService, allowedOrigins []string) *LiveHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &LiveHandler{
		ctx:      ctx,
		hub:      hub,
		lookupUC: lookupUC,
		auth:     auth,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

// Report обслуживает GET /api/reports/:id/live.
func (h *LiveHandler) Report(c *gin.Context) {
	result, err := h.lookupUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Found {
		response.NotFound(c, "report not found")
		return
	}

	h.serve(c, result.Report.Report.ID)
}

// Admin обслуживает GET /api/admin/live?token=... Браузер не передаёт заголовки при upgrade.
func (h *LiveHandler) Admin(c *gin.Context) {
	if _, err := h.auth.Authorize(c.Query("token")); err != nil {
		response.Unauthorized(c, "valid access token required")
		return
	}
	h.serve(c, ws.AdminTopic)
}

func (h *LiveHandler) serve(c *gin.Context, topic string) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrader уже ответил клиенту.
		logger.WithFields(logrus.Fields{"topic": topic, "error": err}).Debug("ws: upgrade не удался")
		return
	}

	client := ws.NewClient(conn, h.hub, topic)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}
	client.Run(h.ctx)
}
