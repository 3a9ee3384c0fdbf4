package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sanmateo-reports/internal/config"
	"github.com/ignatzorin/sanmateo-reports/internal/http/middleware"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/handler"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/response"
	"github.com/ignatzorin/sanmateo-reports/internal/service"
)

// MediaRoute — префикс, под которым раздаются локально сохранённые вложения.
const MediaRoute = "/media"

func SetupRouter(
	cfg *config.Config,
	healthHandler *handler.HealthHandler,
	metaHandler *handler.MetaHandler,
	draftHandler *handler.DraftHandler,
	reportHandler *handler.ReportHandler,
	adminHandler *handler.AdminHandler,
	liveHandler *handler.LiveHandler,
	adminAuth *service.AdminAuthService,
	mediaRoot string,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.MaxMultipartMemory = 8 << 20

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	r.GET("/health", healthHandler.Health)
	// GCS отдаёт файлы сам; локальное хранилище раздаём отсюда.
	if mediaRoot != "" {
		r.StaticFS(MediaRoute, http.Dir(mediaRoot))
	}

	api := r.Group("/api")
	api.GET("/meta", metaHandler.Get)

	submitRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	drafts := api.Group("/drafts")
	{
		drafts.POST("", draftHandler.Start)

		draft := drafts.Group("/:id", middleware.UUIDValidator("id"))
		draft.GET("", draftHandler.Get)
		draft.DELETE("", draftHandler.Discard)
		draft.PUT("/details", draftHandler.UpdateDetails)
		draft.PUT("/location", draftHandler.UpdateLocation)
		draft.PUT("/contact", draftHandler.UpdateContact)
		draft.POST("/attachments", draftHandler.UploadAttachments)
		draft.DELETE("/attachments/:index", draftHandler.RemoveAttachment)
		draft.POST("/advance", draftHandler.Advance)
		draft.POST("/retreat", draftHandler.Retreat)
		draft.POST("/reset", draftHandler.Reset)
		draft.POST("/submit", submitRateLimit, draftHandler.Submit)
	}

	api.POST("/reports", submitRateLimit, reportHandler.Create)
	api.GET("/reports/:id", reportHandler.Get)
	api.GET("/reports/:id/live", liveHandler.Report)

	admin := api.Group("/admin")
	admin.POST("/login", middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod), adminHandler.Login)
	admin.GET("/live", liveHandler.Admin)

	protected := admin.Group("/")
	protected.Use(middleware.AdminAuthMiddleware(adminAuth))
	{
		protected.GET("/dashboard", adminHandler.Dashboard)
		protected.GET("/reports", adminHandler.List)
		protected.GET("/reports/export", adminHandler.Export)
		protected.GET("/reports/map", adminHandler.Map)
		protected.PUT("/reports/:id/status", middleware.ReportIDValidator("id"), adminHandler.UpdateStatus)
	}

	return r
}
