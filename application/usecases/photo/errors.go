package photo_usecases

import (
	"errors"
	"fmt"

	"matchbox.io/infrastructure/photostore"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrGenderRequired = errors.New("declared gender required")
	ErrEmptyImage     = errors.New("empty image")
	ErrPhotoNotFound  = errors.New("photo not found in any slot")
	ErrInvalidUserID  = photostore.ErrInvalidUserID
)

// RejectionError is a moderation verdict, reported to the client as a 400.
type RejectionError struct {
	Check     string
	Reason    string
	Message   string
	NeedPhoto bool
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s check rejected photo: %s", e.Check, e.Reason)
}

// ServiceError is a vendor failure the policy table did not absorb.
type ServiceError struct {
	Service     string
	Unavailable bool
	Err         error
}

func (e *ServiceError) Error() string {
	if e.Unavailable {
		return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s service error: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("photo storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
