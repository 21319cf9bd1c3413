package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	apperrors "matchbox.io/application/appErrors"
	"matchbox.io/application/constants"
	"matchbox.io/application/controller"
	"matchbox.io/infrastructure/env"
	"matchbox.io/infrastructure/logger"
	middlewares "matchbox.io/infrastructure/middleware"
	ratelimit "matchbox.io/infrastructure/ratelimit"
	webRoutev1 "matchbox.io/infrastructure/routes/ginRouter/web/v1"
	server_response "matchbox.io/infrastructure/serverResponse"
)

type ginServer struct {
	cfg    env.Config
	photos *controller.PhotoController
}

// NewRouter builds the gin engine without starting it.
func NewRouter(cfg env.Config, photos *controller.PhotoController) *gin.Engine {
	server := gin.New()
	server.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "User-Agent", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	server.Use(cors.New(corsConfig))
	server.Use(ratelimit.TokenBucketPerIP(10))
	server.Use(middlewares.RequestMiddleware())
	// multipart bodies above this spill to temp files
	server.MaxMultipartMemory = cfg.MaxUploadBytes

	server.Static(constants.PhotoURLPrefix, cfg.ImagesRoot)

	api := server.Group("/api")
	{
		webRoutev1.PhotoRouter(api, photos, cfg.MaxUploadBytes)
	}

	server.GET("/ping", func(ctx *gin.Context) {
		server_response.Responder.Success(ctx, map[string]any{"message": "pong!"})
	})

	server.NoRoute(func(ctx *gin.Context) {
		apperrors.NotFoundError(ctx, constants.MsgRouteDoesNotExist, map[string]any{
			"route": fmt.Sprintf("%s %s", ctx.Request.Method, ctx.Request.URL.Path),
		})
	})
	return server
}

// Start serves until ctx is cancelled, then drains in-flight uploads.
func (s *ginServer) Start(ctx context.Context) error {
	switch s.cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(s.cfg.GinMode)
	default:
		return fmt.Errorf("invalid gin mode used - %s", s.cfg.GinMode)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           NewRouter(s.cfg, s.photos),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server starting on PORT %s", s.cfg.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	logger.Info("server shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
