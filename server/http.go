package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"video-api/config"
	"video-api/constant"
	jobHandler "video-api/handler"
	"video-api/pkg/rabbitmq"
	"video-api/repository"
	"video-api/service"
	"video-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	client, err := config.NewMongoConn(ctx, cfg.Mongo)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewMongoConn")
	}

	repo := repository.NewRepo(client.Database(cfg.Mongo.Database))

	var store storage.Storage
	switch cfg.Upload.Backend {
	case config.StorageBackendMinIO:
		store = storage.NewMinIO(cfg.Storage, cfg.Upload.MinIOBucket)
	default:
		store = storage.NewLocal(cfg.Upload.Dir)
	}

	events := rabbitmq.NewNopPublisher()
	if cfg.Events.BrokerURL != "" {
		events, err = rabbitmq.NewPublisher(ctx, cfg.Events.BrokerURL, cfg.Events.Queue)
		if err != nil {
			zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewPublisher")
		}
		defer events.Close()
	}

	registry := service.NewRegistry(ctx)
	videoService := service.NewService(repo, store, registry, events, cfg.Transcode)
	lectureService := service.NewLectureService(repo)

	h := jobHandler.NewHandler(videoService, lectureService, repo, cfg.App.ServiceName)

	r := gin.Default()
	r.Use(requestLogger(ctx))
	addRoutes(r, h)

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	// In-flight transcode tasks are abandoned here; the root context is
	// already cancelled so each stops at its next step boundary.
	zerolog.Ctx(ctx).Info().Int("running_jobs", registry.Count()).Msg("server shutdown")
}

func addRoutes(r *gin.Engine, h *jobHandler.Handler) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/upload", h.Upload)
	api.GET("/status/:job_id", h.Status)
	api.GET("/lectures", h.ListLectures)
	api.GET("/lectures/:slug", h.GetLecture)
	api.POST("/lectures", h.CreateLecture)
}

// requestLogger carries the root logger into every request context so
// handlers and services can use zerolog.Ctx.
func requestLogger(root context.Context) gin.HandlerFunc {
	logger := zerolog.Ctx(root)
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
	}
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
