// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/pushward/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed constraint. Field is the dotted path to
// the value using its wire (json) name where the struct declares one, so
// API clients see "message.deliveryType" rather than Go identifiers.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// StructError collects every FieldError of one validated value.
type StructError struct {
	errs []FieldError
}

// Errors returns the individual field failures in declaration order.
func (se *StructError) Errors() []FieldError { return se.errs }

// Fields returns the path of every failing field.
func (se *StructError) Fields() []string {
	fields := make([]string, len(se.errs))
	for i, fe := range se.errs {
		fields[i] = fe.Field
	}
	return fields
}

func (se *StructError) Error() string {
	if len(se.errs) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(se.errs))
	for i, fe := range se.errs {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// GetValidator returns the shared validator with the platform and
// deliverytype tags registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(wireName)

		// Registration only fails on an empty tag or nil func.
		_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
			return models.Platform(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("deliverytype", func(fl validator.FieldLevel) bool {
			return models.DeliveryType(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

// wireName reports a field by its json name, falling back to the Go name
// for structs without json tags (configuration).
func wireName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// ValidateStruct validates s and returns nil or a *StructError.
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    return fmt.Errorf("invalid delivery request: %w", verr)
//	}
func ValidateStruct(s interface{}) *StructError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &StructError{errs: []FieldError{{Field: "", Tag: "invalid", Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		out[i] = FieldError{
			Field:   path,
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: describe(path, fe),
		}
	}
	return &StructError{errs: out}
}

func describe(path string, fe validator.FieldError) string {
	param := fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", path, param)
	case "url":
		return path + " must be a valid URL"
	case "platform":
		return path + " must be one of IOS, ANDROID, WEB"
	case "deliverytype":
		return path + " must be one of SILENT, NORMAL, CRITICAL, NO_PUSH"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", path, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", path, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", path, param, unit)
	case "len":
		return fmt.Sprintf("%s must have length %s", path, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", path, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", path, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", path, param)
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}
