package routev1

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "matchbox.io/application/appErrors"
	"matchbox.io/application/constants"
	"matchbox.io/application/controller"
	"matchbox.io/application/controller/dto"
	"matchbox.io/application/interfaces"
)

var errFileTooLarge = errors.New("file too large")

func appContext[T any](ctx *gin.Context, body *T) *interfaces.ApplicationContext[T] {
	typed := &interfaces.ApplicationContext[T]{
		Ctx:     ctx,
		Context: ctx.Request.Context(),
		Body:    body,
		Keys:    ctx.Keys,
		Header:  ctx.Request.Header,
	}
	if value, exists := ctx.Get("AppContext"); exists {
		if saved, ok := value.(*interfaces.ApplicationContext[any]); ok {
			typed.RequestID = saved.RequestID
			typed.UserAgent = saved.UserAgent
			typed.DeviceName = saved.DeviceName
		}
	}
	return typed
}

// readFormFile returns the bytes of the "file" part, nil when the request
// carries none.
func readFormFile(ctx *gin.Context, maxBytes int64) ([]byte, string, error) {
	header, err := ctx.FormFile("file")
	if err != nil {
		return nil, "", nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > maxBytes {
		return nil, "", errFileTooLarge
	}
	return data, header.Filename, nil
}

func rejectFile(ctx *gin.Context, err error) {
	if errors.Is(err, errFileTooLarge) {
		apperrors.ClientError(ctx, constants.MsgFileTooLarge, nil)
		return
	}
	apperrors.ErrorProcessingPayload(ctx)
}

func isMultipart(ctx *gin.Context) bool {
	return strings.HasPrefix(ctx.ContentType(), "multipart/")
}

func PhotoRouter(router *gin.RouterGroup, photos *controller.PhotoController, maxUploadBytes int64) {
	upload := func(ctx *gin.Context) {
		data, name, err := readFormFile(ctx, maxUploadBytes)
		if err != nil {
			rejectFile(ctx, err)
			return
		}
		photos.Upload(appContext(ctx, &dto.UploadPhotoDTO{
			UserID:   dto.UserID(strings.TrimSpace(ctx.PostForm("userId"))),
			File:     data,
			FileName: name,
		}))
	}
	router.POST("/upload", upload)
	router.POST("/uploadPhoto", upload)

	uploadURL := func(ctx *gin.Context) {
		var body dto.UploadURLDTO
		if isMultipart(ctx) {
			data, name, err := readFormFile(ctx, maxUploadBytes)
			if err != nil {
				rejectFile(ctx, err)
				return
			}
			body = dto.UploadURLDTO{
				UserID:   dto.UserID(strings.TrimSpace(ctx.PostForm("userId"))),
				FileURL:  strings.TrimSpace(ctx.PostForm("fileUrl")),
				File:     data,
				FileName: name,
			}
		} else if err := ctx.ShouldBindJSON(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		photos.UploadURL(appContext(ctx, &body))
	}
	router.POST("/uploadUrl", uploadURL)
	router.POST("/webUploadPhoto", uploadURL)

	router.POST("/uploadBase64", func(ctx *gin.Context) {
		var body dto.UploadBase64DTO
		if err := ctx.ShouldBindJSON(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		photos.UploadBase64(appContext(ctx, &body))
	})

	router.POST("/deletePhoto", func(ctx *gin.Context) {
		var body dto.DeletePhotoDTO
		if err := ctx.ShouldBindJSON(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		photos.DeletePhoto(appContext(ctx, &body))
	})

	router.POST("/clear", func(ctx *gin.Context) {
		var body dto.ClearPhotosDTO
		if err := ctx.ShouldBindJSON(&body); err != nil {
			apperrors.ErrorProcessingPayload(ctx)
			return
		}
		photos.Clear(appContext(ctx, &body))
	})

	photoRouter := router.Group("/photos")
	{
		photoRouter.POST("/checkPhotoUrl", func(ctx *gin.Context) {
			var body dto.CheckPhotoURLDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ClientError(ctx, constants.MsgInvalidPayload, map[string]any{"needPhoto": 1})
				return
			}
			photos.CheckPhotoURL(appContext(ctx, &body))
		})
	}
}
