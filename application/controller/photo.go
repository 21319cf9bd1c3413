package controller

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "matchbox.io/application/appErrors"
	"matchbox.io/application/constants"
	"matchbox.io/application/controller/dto"
	"matchbox.io/application/interfaces"
	photo_usecases "matchbox.io/application/usecases/photo"
	"matchbox.io/application/utils"
	"matchbox.io/entities"
	"matchbox.io/infrastructure/logger"
	server_response "matchbox.io/infrastructure/serverResponse"
	"matchbox.io/infrastructure/validator"
)

// PhotoController serves the photo endpoints of the mini app.
type PhotoController struct {
	Pipeline *photo_usecases.Pipeline
	// relay verified intake used by the url endpoints
	Verified photo_usecases.Processor
}

func NewPhotoController(pipeline *photo_usecases.Pipeline, verified photo_usecases.Processor) *PhotoController {
	if verified == nil {
		verified = pipeline
	}
	return &PhotoController{Pipeline: pipeline, Verified: verified}
}

func (c *PhotoController) Upload(ctx *interfaces.ApplicationContext[dto.UploadPhotoDTO]) {
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	outcome, err := c.Pipeline.Process(ctx.RequestContext(), photo_usecases.Upload{
		UserID:   ctx.Body.UserID.String(),
		Data:     ctx.Body.File,
		FileName: ctx.Body.FileName,
		Source:   "multipart",
	})
	if err != nil {
		respondWithPhotoError(ctx.Ctx, err, nil)
		return
	}
	server_response.Responder.Success(ctx.Ctx, map[string]any{
		"url":  outcome.URL,
		"user": outcome.User,
	})
}

func (c *PhotoController) UploadURL(ctx *interfaces.ApplicationContext[dto.UploadURLDTO]) {
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	upload := photo_usecases.Upload{
		UserID:   ctx.Body.UserID.String(),
		Data:     ctx.Body.File,
		FileName: ctx.Body.FileName,
		Source:   "relay",
	}
	if len(upload.Data) == 0 {
		data, err := c.Pipeline.Download(ctx.RequestContext(), ctx.Body.FileURL)
		if err != nil {
			respondWithPhotoError(ctx.Ctx, err, nil)
			return
		}
		upload.Data = data
		upload.Source = "relay-url"
	}
	outcome, err := c.Verified.Process(ctx.RequestContext(), upload)
	if err != nil {
		respondWithPhotoError(ctx.Ctx, err, nil)
		return
	}
	server_response.Responder.Success(ctx.Ctx, map[string]any{
		"url": outcome.URL,
	})
}

// UploadBase64 processes every photo independently. A rejected photo does not
// stop the ones after it.
func (c *PhotoController) UploadBase64(ctx *interfaces.ApplicationContext[dto.UploadBase64DTO]) {
	if len(ctx.Body.Photos) > constants.MaxBase64Photos {
		apperrors.ClientError(ctx.Ctx, constants.MsgTooManyPhotos, nil)
		return
	}
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}

	uploaded := []string{}
	failures := []string{}
	var user *entities.User
	for index, photo := range ctx.Body.Photos {
		data, err := utils.DecodeBase64Image(photo)
		if err != nil {
			failures = append(failures, fmt.Sprintf("photo %d: %s", index+1, constants.MsgInvalidImage))
			continue
		}
		outcome, err := c.Pipeline.Process(ctx.RequestContext(), photo_usecases.Upload{
			UserID: ctx.Body.UserID.String(),
			Data:   data,
			Source: "base64",
		})
		if err != nil {
			failures = append(failures, fmt.Sprintf("photo %d: %s", index+1, clientMessage(err)))
			if !recoverable(err) {
				break
			}
			continue
		}
		uploaded = append(uploaded, outcome.URL)
		user = outcome.User
	}

	if len(uploaded) == 0 {
		apperrors.ClientError(ctx.Ctx, constants.MsgNoPhotosUploaded, map[string]any{
			"errors": failures,
		})
		return
	}
	server_response.Responder.Success(ctx.Ctx, map[string]any{
		"uploadedUrls": uploaded,
		"user":         user,
		"errors":       failures,
	})
}

func (c *PhotoController) DeletePhoto(ctx *interfaces.ApplicationContext[dto.DeletePhotoDTO]) {
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	user, err := c.Pipeline.DeletePhoto(ctx.RequestContext(), ctx.Body.UserID.String(), ctx.Body.PhotoURL)
	if err != nil {
		respondWithPhotoError(ctx.Ctx, err, nil)
		return
	}
	server_response.Responder.Success(ctx.Ctx, map[string]any{
		"user": user,
	})
}

func (c *PhotoController) Clear(ctx *interfaces.ApplicationContext[dto.ClearPhotosDTO]) {
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	if _, err := c.Pipeline.ClearPhotos(ctx.RequestContext(), ctx.Body.UserID.String()); err != nil {
		respondWithPhotoError(ctx.Ctx, err, nil)
		return
	}
	server_response.Responder.Success(ctx.Ctx, nil)
}

func (c *PhotoController) CheckPhotoURL(ctx *interfaces.ApplicationContext[dto.CheckPhotoURLDTO]) {
	needPhoto := map[string]any{"needPhoto": 1}
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		details := []string{}
		for _, err := range *validationErr {
			details = append(details, err.Error())
		}
		apperrors.ClientError(ctx.Ctx, constants.MsgValidationFailed, map[string]any{
			"errors":    details,
			"needPhoto": 1,
		})
		return
	}
	result, err := c.Pipeline.CheckPhotoURL(ctx.RequestContext(), ctx.Body.UserID.String(), ctx.Body.PhotoURL, ctx.Body.Gender)
	if err != nil {
		respondWithPhotoError(ctx.Ctx, err, needPhoto)
		return
	}
	flag := 0
	if result.NeedPhoto {
		flag = 1
	}
	server_response.Responder.Success(ctx.Ctx, map[string]any{
		"needPhoto": flag,
	})
}

// recoverable reports whether the next photo of a batch may still succeed.
func recoverable(err error) bool {
	var rejection *photo_usecases.RejectionError
	return errors.As(err, &rejection) || errors.Is(err, photo_usecases.ErrEmptyImage)
}

func clientMessage(err error) string {
	var rejection *photo_usecases.RejectionError
	var serviceErr *photo_usecases.ServiceError
	var downloadErr *photo_usecases.DownloadError
	switch {
	case errors.As(err, &rejection):
		return rejection.Message
	case errors.As(err, &serviceErr):
		if serviceErr.Unavailable {
			return constants.MsgServiceDown
		}
		return constants.MsgServerError
	case errors.As(err, &downloadErr):
		return constants.MsgDownloadFailed
	case errors.Is(err, photo_usecases.ErrInvalidUserID):
		return constants.MsgUserIDRequired
	case errors.Is(err, photo_usecases.ErrEmptyImage):
		return constants.MsgFileRequired
	case errors.Is(err, photo_usecases.ErrUserNotFound):
		return constants.MsgUserNotFound
	case errors.Is(err, photo_usecases.ErrGenderRequired):
		return constants.MsgGenderRequired
	case errors.Is(err, photo_usecases.ErrPhotoNotFound):
		return constants.MsgPhotoNotFound
	}
	return constants.MsgServerError
}

// respondWithPhotoError writes the failure envelope for a use case error.
// extra is merged into every response.
func respondWithPhotoError(ctx any, err error, extra map[string]any) {
	var rejection *photo_usecases.RejectionError
	var serviceErr *photo_usecases.ServiceError
	var downloadErr *photo_usecases.DownloadError

	switch {
	case errors.As(err, &rejection):
		response := map[string]any{}
		for key, value := range extra {
			response[key] = value
		}
		if rejection.Check == photo_usecases.CheckAuthenticity {
			response["isMeme"] = true
			response["reason"] = rejection.Reason
		}
		_, forced := extra["needPhoto"]
		apperrors.ModerationRejected(ctx, rejection.Message, rejection.NeedPhoto || forced, response)
	case errors.As(err, &serviceErr):
		status := http.StatusInternalServerError
		if serviceErr.Unavailable {
			status = http.StatusServiceUnavailable
		}
		apperrors.ExternalDependencyError(ctx, serviceErr.Service, status, serviceErr, extra)
	case errors.As(err, &downloadErr):
		logger.Warning("photo download failed", logger.LoggerOptions{
			Key:  "url",
			Data: downloadErr.URL,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: downloadErr.Err.Error(),
		})
		apperrors.ClientError(ctx, constants.MsgDownloadFailed, extra)
	case errors.Is(err, photo_usecases.ErrInvalidUserID):
		apperrors.ClientError(ctx, constants.MsgUserIDRequired, extra)
	case errors.Is(err, photo_usecases.ErrEmptyImage):
		apperrors.ClientError(ctx, constants.MsgFileRequired, extra)
	case errors.Is(err, photo_usecases.ErrGenderRequired):
		apperrors.ClientError(ctx, constants.MsgGenderRequired, extra)
	case errors.Is(err, photo_usecases.ErrUserNotFound):
		apperrors.NotFoundError(ctx, constants.MsgUserNotFound, extra)
	case errors.Is(err, photo_usecases.ErrPhotoNotFound):
		apperrors.NotFoundError(ctx, constants.MsgPhotoNotFound, extra)
	default:
		apperrors.FatalServerError(ctx, err, extra)
	}
}
