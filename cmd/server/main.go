package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sanmateo-reports/internal/config"
	"github.com/ignatzorin/sanmateo-reports/internal/db"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/repository"
	httpRouter "github.com/ignatzorin/sanmateo-reports/internal/http/router"
	"github.com/ignatzorin/sanmateo-reports/internal/infrastructure/persistence"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/dto"
	"github.com/ignatzorin/sanmateo-reports/internal/interface/http/handler"
	"github.com/ignatzorin/sanmateo-reports/internal/logger"
	"github.com/ignatzorin/sanmateo-reports/internal/reportid"
	"github.com/ignatzorin/sanmateo-reports/internal/scheduler"
	"github.com/ignatzorin/sanmateo-reports/internal/service"
	"github.com/ignatzorin/sanmateo-reports/internal/storage"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/report"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/submission"
	"github.com/ignatzorin/sanmateo-reports/internal/ws"
	"github.com/ignatzorin/sanmateo-reports/migrations"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	// Хранилище отчётов.
	var (
		reportRepo repository.ReportRepository
		pinger     handler.Pinger
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
		}
		defer safeClose(dbConn)

		if err := db.RunMigrations(ctx, dbConn, migrationsFS(cfg.MigrationsPath)); err != nil {
			logger.Log.Fatalf("main: ошибка миграций: %v", err)
		}
		pgRepo := persistence.NewPostgresReportRepository(dbConn)
		reportRepo, pinger = pgRepo, pgRepo
	default:
		reportRepo = persistence.NewMemoryReportRepository(persistence.SeedReports()...)
		logger.Log.Warn("main: отчёты хранятся в памяти и пропадут при перезапуске")
	}

	// Хранилище вложений.
	var (
		attachmentStore submission.AttachmentStore
		mediaRoot       string
	)
	if cfg.GCSBucket != "" {
		gcsStore, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.MaxUploadSizeMB)
		if err != nil {
			logger.Log.Fatalf("main: не удалось подключить GCS: %v", err)
		}
		defer gcsStore.Close()
		attachmentStore = gcsStore
	} else {
		localStore, err := storage.NewLocalStore(cfg.MediaStoragePath, httpRouter.MediaRoute, cfg.MaxUploadSizeMB)
		if err != nil {
			logger.Log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
		}
		attachmentStore = localStore
		mediaRoot = localStore.Root()
	}

	// Вспомогательные сервисы.
	cache := service.NewCacheService()
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	adminAuth := service.NewAdminAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, tokenManager)
	if cfg.AdminPasswordHash == "" {
		logger.Log.Warn("main: ADMIN_PASSWORD_HASH не задан, вход администратора отключён")
	}

	hub := ws.NewHub()
	go hub.Run(ctx)
	notifier := ws.NewReportNotifier(hub, dto.PresentReport)

	// Use cases.
	createUC := report.NewCreateReportUseCase(reportRepo, reportid.NewGenerator(), cache)
	lookupUC := report.NewLookupReportUseCase(reportRepo)
	listUC := report.NewListReportsUseCase(reportRepo)
	updateUC := report.NewUpdateStatusUseCase(reportRepo, notifier, cache)
	dashboardUC := report.NewDashboardUseCase(reportRepo, cache, cfg.DashboardCacheTTL)

	sessions := submission.NewSessionStore(createUC, cfg.SubmitTimeout, cfg.DraftTTL)
	attachments := submission.NewAttachmentService(sessions, attachmentStore)

	// Фоновое обслуживание.
	sched := scheduler.New(ctx, time.Minute)
	for _, job := range []scheduler.Job{
		scheduler.ExpiredDraftsJob(sessions, attachments),
		scheduler.CacheJob(cache),
	} {
		if err := sched.Add(cfg.CleanupSchedule, job); err != nil {
			logger.Log.Fatalf("main: %v", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		handler.NewHealthHandler(pinger, cfg.StorageDriver),
		handler.NewMetaHandler(),
		handler.NewDraftHandler(sessions, attachments, cfg.MaxUploadSizeMB),
		handler.NewReportHandler(createUC, lookupUC),
		handler.NewAdminHandler(adminAuth, dashboardUC, listUC, updateUC),
		handler.NewLiveHandler(ctx, hub, lookupUC, adminAuth, cfg.AllowedOrigins),
		adminAuth,
		mediaRoot,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":    cfg.HTTPPort,
		"env":     cfg.Env,
		"storage": cfg.StorageDriver,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// migrationsFS выбирает каталог миграций: встроенные файлы или MIGRATIONS_PATH.
func migrationsFS(path string) fs.FS {
	if path == "" {
		return migrations.FS
	}
	return os.DirFS(path)
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}
