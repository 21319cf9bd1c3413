package validator

import (
	"github.com/go-playground/validator/v10"
	"matchbox.io/infrastructure/photostore"
)

func validateGender(fl validator.FieldLevel) bool {
	gender := fl.Field().String()
	return gender == "male" || gender == "female"
}

// user ids name directories on disk
func validateUserID(fl validator.FieldLevel) bool {
	return photostore.ValidateUserID(fl.Field().String()) == nil
}
