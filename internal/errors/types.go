package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/recipeblog/recipeq/pkg/query"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeOpenAPI    ErrorType = "openapi"
	ErrorTypeMCP        ErrorType = "mcp"
	ErrorTypeSuperseded ErrorType = "superseded"
)

// RecipeError is a categorised error carrying structured context for logging
type RecipeError struct {
	Type    ErrorType
	Message string
	Context map[string]interface{}
	Cause   error
}

func (e *RecipeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

func (e *RecipeError) Unwrap() error {
	return e.Cause
}

// Is matches another *RecipeError of the same type
func (e *RecipeError) Is(target error) bool {
	if targetErr, ok := target.(*RecipeError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *RecipeError) WithContext(key string, value interface{}) *RecipeError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func New(errType ErrorType, message string) *RecipeError {
	return &RecipeError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

func Newf(errType ErrorType, format string, args ...interface{}) *RecipeError {
	return New(errType, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a type and message
func Wrap(err error, errType ErrorType, message string) *RecipeError {
	return &RecipeError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
		Cause:   err,
	}
}

func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *RecipeError {
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// FromQuery converts a query validation error into a validation RecipeError,
// copying the offending field and kind into the context.
func FromQuery(err error) *RecipeError {
	var qErr *query.Error
	if !stderrors.As(err, &qErr) {
		return Wrap(err, ErrorTypeInternal, "unexpected query error")
	}

	wrapped := Wrap(err, ErrorTypeValidation, "invalid query request").
		WithContext("kind", string(qErr.Kind))
	if qErr.Field != "" {
		wrapped.WithContext("field", qErr.Field)
	}
	if qErr.Value != "" {
		wrapped.WithContext("value", qErr.Value)
	}
	return wrapped
}

// IsType checks whether err, or anything it wraps, is a RecipeError of errType
func IsType(err error, errType ErrorType) bool {
	var rErr *RecipeError
	if stderrors.As(err, &rErr) {
		return rErr.Type == errType
	}
	return false
}

// GetType returns the error type, or ErrorTypeInternal if err is not a RecipeError
func GetType(err error) ErrorType {
	var rErr *RecipeError
	if stderrors.As(err, &rErr) {
		return rErr.Type
	}
	return ErrorTypeInternal
}

func GetContext(err error) map[string]interface{} {
	var rErr *RecipeError
	if stderrors.As(err, &rErr) {
		return rErr.Context
	}
	return nil
}
