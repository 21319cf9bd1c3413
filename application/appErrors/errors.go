package apperrors

import (
	"net/http"

	"matchbox.io/application/constants"
	"matchbox.io/infrastructure/logger"
	server_response "matchbox.io/infrastructure/serverResponse"
)

func NotFoundError(ctx interface{}, message string, extra map[string]any) {
	server_response.Responder.Failure(ctx, http.StatusNotFound, message, extra)
}

func ValidationFailedError(ctx interface{}, errMessages *[]error) {
	details := []string{}
	if errMessages != nil {
		for _, err := range *errMessages {
			details = append(details, err.Error())
		}
	}
	server_response.Responder.Failure(ctx, http.StatusBadRequest, constants.MsgValidationFailed, map[string]any{
		"errors": details,
	})
}

func ErrorProcessingPayload(ctx interface{}) {
	server_response.Responder.Failure(ctx, http.StatusBadRequest, constants.MsgInvalidPayload, nil)
}

// ModerationRejected reports a photo that failed a moderation check.
// needPhoto tells the client to reopen the photo upload screen.
func ModerationRejected(ctx interface{}, message string, needPhoto bool, extra map[string]any) {
	response := map[string]any{}
	for key, value := range extra {
		response[key] = value
	}
	if needPhoto {
		response["needPhoto"] = 1
	}
	server_response.Responder.Failure(ctx, http.StatusBadRequest, message, response)
}

// ExternalDependencyError logs the vendor failure in full; the client only
// gets a generic message.
func ExternalDependencyError(ctx interface{}, serviceName string, statusCode int, err error, extra map[string]any) {
	logger.Error("external dependency error", logger.LoggerOptions{
		Key:  "service",
		Data: serviceName,
	}, logger.LoggerOptions{
		Key:  "error",
		Data: err.Error(),
	})
	message := constants.MsgServerError
	if statusCode == http.StatusServiceUnavailable {
		message = constants.MsgServiceDown
	}
	server_response.Responder.Failure(ctx, statusCode, message, extra)
}

func FatalServerError(ctx interface{}, err error, extra map[string]any) {
	logger.Error("fatal server error", logger.LoggerOptions{
		Key:  "error",
		Data: err.Error(),
	})
	server_response.Responder.Failure(ctx, http.StatusInternalServerError, constants.MsgServerError, extra)
}

func ClientError(ctx interface{}, msg string, extra map[string]any) {
	server_response.Responder.Failure(ctx, http.StatusBadRequest, msg, extra)
}

func TooManyRequests(ctx interface{}) {
	server_response.Responder.Failure(ctx, http.StatusTooManyRequests, constants.MsgRateLimited, nil)
}
