// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

// Package validation wraps go-playground/validator v10 for configuration
// structs, API request bodies and import-language tags.
//
// Field names in messages are the keys a user writes: the koanf tag for
// configuration ("sync.import_languages[1]"), the json tag for request
// bodies ("sync_metadata"), else the Go field name.
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return err
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/assetsync/internal/models"
)

// CodeValidationError is the API error code for rejected request bodies.
const CodeValidationError = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// Error lists every field that failed validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// ToAPIError converts e into the API error envelope.
func (e *Error) ToAPIError() *models.APIError {
	apiErr := &models.APIError{Code: CodeValidationError, Message: e.Error()}
	if len(e.Fields) == 0 {
		return apiErr
	}
	fields := make([]map[string]string, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = map[string]string{"field": f.Field, "tag": f.Tag, "message": f.Message}
	}
	apiErr.Details = map[string]interface{}{"fields": fields}
	return apiErr
}

// GetValidator returns the shared validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(tagName)
	})
	return validate
}

// tagName names a field by its koanf or json key.
func tagName(f reflect.StructField) string {
	for _, key := range []string{"koanf", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// ValidateStruct validates s. It returns nil or an *Error.
func ValidateStruct(s interface{}) *Error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := &Error{Fields: make([]FieldError, len(fieldErrs))}
	for i, fe := range fieldErrs {
		field := fieldPath(fe)
		out.Fields[i] = FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe, field),
		}
	}
	return out
}

// LanguageTag checks that tag is a well-formed BCP 47 language tag.
func LanguageTag(tag string) error {
	if err := GetValidator().Var(tag, "required,bcp47_language_tag"); err != nil {
		return fmt.Errorf("%q is not a valid BCP 47 language tag", tag)
	}
	return nil
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

var messages = map[string]string{
	"required":           "%s is required",
	"url":                "%s must be a valid URL",
	"hostname_rfc1123":   "%s must be a valid host name",
	"bcp47_language_tag": "%s must be a valid BCP 47 language tag",
}

var messagesWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func message(fe validator.FieldError, field string) string {
	if tmpl, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field, fe.Param())
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	} else if fe.Kind() == reflect.Slice {
		unit = " entries"
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, fe.Param(), unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, fe.Param(), unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
