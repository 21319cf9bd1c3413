package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"matchbox.io/application/interfaces"
	"matchbox.io/application/middlewares"
	"matchbox.io/infrastructure/logger"
)

// RequestMiddleware stores the AppContext for the routes and logs every
// request once it has been served.
func RequestMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		appContext, next := middlewares.RequestContextMiddleware(&interfaces.ApplicationContext[any]{
			Ctx:     ctx,
			Context: ctx.Request.Context(),
			Keys:    ctx.Keys,
			Header:  ctx.Request.Header,
		})
		if !next {
			return
		}
		ctx.Set("AppContext", appContext)
		ctx.Header("X-Request-Id", appContext.RequestID)
		ctx.Next()

		logger.Info("request served", logger.LoggerOptions{
			Key:  "requestId",
			Data: appContext.RequestID,
		}, logger.LoggerOptions{
			Key:  "method",
			Data: ctx.Request.Method,
		}, logger.LoggerOptions{
			Key:  "path",
			Data: ctx.FullPath(),
		}, logger.LoggerOptions{
			Key:  "status",
			Data: ctx.Writer.Status(),
		}, logger.LoggerOptions{
			Key:  "latency",
			Data: time.Since(start).String(),
		}, logger.LoggerOptions{
			Key:  "device",
			Data: appContext.DeviceName,
		})
	}
}
