package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutoring-admin-api/api/swagger"
	"github.com/noah-isme/tutoring-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	"github.com/noah-isme/tutoring-admin-api/internal/repository"
	"github.com/noah-isme/tutoring-admin-api/internal/service"
	"github.com/noah-isme/tutoring-admin-api/pkg/cache"
	"github.com/noah-isme/tutoring-admin-api/pkg/config"
	"github.com/noah-isme/tutoring-admin-api/pkg/database"
	"github.com/noah-isme/tutoring-admin-api/pkg/export"
	"github.com/noah-isme/tutoring-admin-api/pkg/firebase"
	"github.com/noah-isme/tutoring-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutoring-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutoring-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/tutoring-admin-api/pkg/storage"
	"github.com/noah-isme/tutoring-admin-api/pkg/suggest"
)

// @title Tutoring Admin API
// @version 1.0.0
// @description Attendance, score entry, printable reports and monthly comments for a tutoring center
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to apply schema migrations", zap.Error(err))
		}
	}

	sessions, err := sessionStore(ctx, cfg, db)
	if err != nil {
		logr.Fatal("failed to init session store", zap.Error(err), zap.String("store", cfg.SessionStore))
	}

	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService(cfg.SessionStore)

	readiness := map[string]handler.ReadinessCheck{
		"database": func(ctx context.Context) error { return db.PingContext(ctx) },
	}

	cacheSvc := service.NewCacheService(nil, metricsSvc, cfg.ScoreCache.TTL, logr, false)
	if cfg.ScoreCache.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("score cache disabled: redis unavailable", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient)
			defer cacheRepo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.ScoreCache.TTL, logr, true)
			readiness["redis"] = cacheRepo.Ping
		}
	}

	var completer service.Completer
	if client := suggest.NewClient(cfg.AI); client != nil {
		completer = client
	} else {
		logr.Info("comment suggestions disabled: AI_API_KEY not set")
	}

	scoreSvc := service.NewScoreService(sessions, cacheSvc, metricsSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(sessions, cacheSvc, metricsSvc, validate, logr)
	reportSvc := service.NewReportService(sessions, storage.NewSignedURLSigner(cfg.Print.LinkSecret, cfg.Print.LinkTTL), metricsSvc, logr,
		service.ReportServiceConfig{PrintPath: cfg.APIPrefix + "/print/"})
	exportSvc := service.NewExportService(sessions, metricsSvc, logr, export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter())
	commentSvc := service.NewCommentService(sessions, repository.NewCommentRepository(db), completer, metricsSvc, validate, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{Secret: cfg.JWT.Secret, Audience: cfg.JWT.Audience, Leeway: 30 * time.Second})

	sessionHandler := handler.NewSessionHandler(attendanceSvc)
	scoreHandler := handler.NewScoreHandler(scoreSvc)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/print/:token", reportHandler.Print)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	secured.Use(internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	{
		secured.GET("/sessions/:id", sessionHandler.Get)
		secured.GET("/classes/:id/sessions", sessionHandler.ListByClass)
		secured.PATCH("/sessions/:id/attendance/:studentId", internalmiddleware.Audit(logr, "attendance.mark", "session"), sessionHandler.MarkAttendance)

		secured.GET("/sessions/:id/students/:studentId/scores", scoreHandler.List)
		secured.PUT("/sessions/:id/students/:studentId/scores", internalmiddleware.Audit(logr, "score.upsert", "session"), scoreHandler.Upsert)
		secured.DELETE("/sessions/:id/students/:studentId/scores", internalmiddleware.Audit(logr, "score.delete", "session"), scoreHandler.Delete)

		secured.POST("/sessions/:id/students/:studentId/print-link", reportHandler.PrintLink)
		secured.GET("/sessions/:id/export", reportHandler.Export)

		secured.GET("/classes/:id/students/:studentId/monthly-summary", commentHandler.MonthlySummary)
		secured.GET("/classes/:id/comments", commentHandler.List)
		secured.POST("/comments/suggest", commentHandler.Suggest)
		secured.PUT("/comments", internalmiddleware.Audit(logr, "comment.save", "comment"), commentHandler.Save)
		secured.DELETE("/comments/:id", internalmiddleware.Audit(logr, "comment.delete", "comment"), commentHandler.Delete)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("session_store", cfg.SessionStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func sessionStore(ctx context.Context, cfg *config.Config, db *sqlx.DB) (service.SessionStore, error) {
	if cfg.SessionStore == config.StoreFirebase {
		client, err := firebase.NewDatabase(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		return repository.NewFirebaseSessionRepository(client), nil
	}
	return repository.NewSessionRepository(db), nil
}
