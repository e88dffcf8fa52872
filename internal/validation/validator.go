// Package validation checks request payloads against declarative schemas.
//
// Failures are reported as *apperr.Error values of kind KindValidation that
// carry the dotted path of the offending input (for example
// "search.clockSpeed.value") and a message naming that path. Only the first
// violation is reported; nothing is partially applied.
//
// Value rules (lengths, positivity, password charset) are enforced with
// go-playground/validator; structural checks (object shape, JSON types,
// unknown keys) are done here because they must run before a typed value
// exists.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"computer-inventory-api/internal/apperr"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// passwordPattern lists every character a password may contain
var passwordPattern = regexp.MustCompile("^[a-zA-Z0-9 `~!@#$%^&*()\\-_+=\\[\\]{};:'\"<>,./?\\\\]+$")

// GetValidator returns the singleton validator instance.
// Field names in errors are taken from the json tag.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return passwordPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct validates s and reports its first failing field
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Internal(err)
	}
	fe := fieldErrs[0]
	return apperr.Validation(fe.Field(), translate(fe.Field(), fe))
}

// ValidateVar checks a single value against a validator tag
func ValidateVar(path string, value any, tag string) error {
	err := GetValidator().Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Internal(err)
	}
	return apperr.Validation(path, translate(path, fieldErrs[0]))
}

// translate converts a validator.FieldError to a message about path
func translate(path string, fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "min":
		if isString && param == "1" {
			return path + " is not allowed to be empty"
		}
		if isString {
			return fmt.Sprintf("%s length must be at least %s characters long", path, param)
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", path, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s length must be less than or equal to %s characters long", path, param)
		}
		return fmt.Sprintf("%s must be less than or equal to %s", path, param)
	case "gt":
		if param == "0" {
			return path + " must be a positive number"
		}
		return fmt.Sprintf("%s must be greater than %s", path, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, strings.Join(strings.Fields(param), ", "))
	case "password":
		return path + " fails to match the required pattern"
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}
