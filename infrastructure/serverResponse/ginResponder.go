package server_response

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"matchbox.io/infrastructure/logger"
)

type ginResponder struct{}

var Responder = ginResponder{}

// Respond writes payload as JSON and aborts the handler chain.
func (gr ginResponder) Respond(ctx interface{}, code int, payload map[string]any) {
	ginCtx, ok := (ctx).(*gin.Context)
	if !ok {
		logger.Error("could not transform *interface{} to gin.Context in serverResponse package", logger.LoggerOptions{
			Key:  "payload",
			Data: ctx,
		})
		return
	}
	ginCtx.Abort()
	ginCtx.JSON(code, payload)
}

// Success sends {success: true, ...payload} with status 200.
func (gr ginResponder) Success(ctx interface{}, payload map[string]any) {
	response := map[string]any{"success": true}
	for key, value := range payload {
		response[key] = value
	}
	gr.Respond(ctx, http.StatusOK, response)
}

// Failure sends {success: false, error: message, ...extra}.
func (gr ginResponder) Failure(ctx interface{}, code int, message string, extra map[string]any) {
	response := map[string]any{
		"success": false,
		"error":   message,
	}
	for key, value := range extra {
		response[key] = value
	}
	if os.Getenv("ENV") != "prod" {
		logger.Info("response", logger.LoggerOptions{
			Key:  "status",
			Data: code,
		}, logger.LoggerOptions{
			Key:  "message",
			Data: message,
		})
	}
	gr.Respond(ctx, code, response)
}
