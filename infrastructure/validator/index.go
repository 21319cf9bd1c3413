package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// report fields by their json names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("gender", validateGender)
	validate.RegisterValidation("userid", validateUserID)
}

type Validator struct{}

func (v *Validator) ValidateStruct(payload interface{}) *[]error {
	return validateStruct(payload)
}

func (v *Validator) ValidateValue(value any, rules string) error {
	return validateField(value, rules)
}

var ValidatorInstance = Validator{}

func validateStruct(payload interface{}) *[]error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &[]error{err}
	}
	errs := []error{}
	for _, fieldErr := range validationErrors {
		errs = append(errs, describe(fieldErr))
	}
	return &errs
}

func validateField(value any, rules string) error {
	err := validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return describe(validationErrors[0])
	}
	return err
}

func describe(fieldErr validator.FieldError) error {
	field := lowerFirst(fieldErr.Field())
	switch fieldErr.Tag() {
	case "required", "required_without":
		return fmt.Errorf("%s is required", field)
	case "gender":
		return fmt.Errorf("%s must be male or female", field)
	case "userid":
		return fmt.Errorf("%s must be 1-64 letters, digits, '-' or '_'", field)
	case "url", "http_url":
		return fmt.Errorf("%s must be a valid url", field)
	case "min", "max":
		return fmt.Errorf("%s must have %s %s item(s)", field, map[string]string{"min": "at least", "max": "at most"}[fieldErr.Tag()], fieldErr.Param())
	}
	return fmt.Errorf("%s failed %s validation", field, fieldErr.Tag())
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
