package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// UserID accepts both "42" and 42, mini app clients send either.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*id = UserID(strings.TrimSpace(value))
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return errors.New("userId must be a string or a number")
	}
	*id = UserID(number.String())
	return nil
}

func (id UserID) String() string {
	return string(id)
}

type UploadPhotoDTO struct {
	UserID   UserID `json:"userId" form:"userId" validate:"required,userid"`
	File     []byte `json:"-" validate:"required"`
	FileName string `json:"-"`
}

// UploadURLDTO carries either a multipart file or a url to download.
type UploadURLDTO struct {
	UserID   UserID `json:"userId" form:"userId" validate:"required,userid"`
	FileURL  string `json:"fileUrl" form:"fileUrl" validate:"required_without=File,omitempty,http_url"`
	File     []byte `json:"-"`
	FileName string `json:"-"`
}

type UploadBase64DTO struct {
	UserID UserID   `json:"userId" validate:"required,userid"`
	Photos []string `json:"photos" validate:"required,min=1"`
}

type DeletePhotoDTO struct {
	UserID   UserID `json:"userId" validate:"required,userid"`
	PhotoURL string `json:"photoUrl" validate:"required"`
}

type ClearPhotosDTO struct {
	UserID UserID `json:"userId" validate:"required,userid"`
}

type CheckPhotoURLDTO struct {
	UserID   UserID `json:"userId" validate:"required,userid"`
	PhotoURL string `json:"photoUrl" validate:"required,http_url"`
	Gender   string `json:"gender" validate:"omitempty,gender"`
}
