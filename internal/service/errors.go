package service

import (
	"errors"
	"fmt"
	"strings"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/pkg/validator"
)

func init() {
	// Closed role set and action names, both compared case-insensitively
	if err := validator.RegisterStringRule("role", func(v string) bool {
		_, err := model.ParseRole(v)
		return err == nil
	}); err != nil {
		panic(err)
	}
	if err := validator.RegisterStringRule("action_name", func(v string) bool {
		return model.ValidActionName(strings.ToLower(v))
	}); err != nil {
		panic(err)
	}
}

// Error taxonomy shared by every service. Handlers map these to HTTP codes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// FieldError names one invalid input field
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports missing or malformed input
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, reason string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// validate runs struct tags and converts failures into a ValidationError
func validate(req interface{}) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range errs {
		ve.Fields = append(ve.Fields, FieldError{Field: e.FailedField, Reason: "failed on " + e.Tag})
	}
	return ve
}

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func internalError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}
