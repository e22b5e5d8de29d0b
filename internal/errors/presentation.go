package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// UserMessage returns a user-friendly error message
func UserMessage(err error) string {
	var rErr *RecipeError
	if stderrors.As(err, &rErr) {
		return formatUserError(rErr)
	}
	return err.Error()
}

func formatUserError(rErr *RecipeError) string {
	switch rErr.Type {
	case ErrorTypeValidation:
		return formatValidationError(rErr)
	case ErrorTypeNetwork:
		return formatNetworkError(rErr)
	case ErrorTypeConfig:
		return formatConfigError(rErr)
	case ErrorTypeSuperseded:
		return "request superseded by a newer one"
	default:
		return rErr.Error()
	}
}

func formatValidationError(rErr *RecipeError) string {
	msg := rErr.Error()
	if field, ok := rErr.Context["field"]; ok {
		msg = fmt.Sprintf("Invalid %s: %s", field, msg)
	}
	return msg
}

func formatNetworkError(rErr *RecipeError) string {
	msg := rErr.Error()
	if url, ok := rErr.Context["url"]; ok {
		msg = fmt.Sprintf("Network error accessing %s: %s", url, msg)
	}
	return msg
}

func formatConfigError(rErr *RecipeError) string {
	msg := rErr.Error()
	if configType, ok := rErr.Context["config_type"]; ok {
		msg = fmt.Sprintf("Configuration error (%s): %s", configType, msg)
	}
	return msg
}

// PresentError logs err through the global zerolog logger, with its context
// as structured fields. It does not exit.
func PresentError(err error) {
	if err == nil {
		return
	}

	var rErr *RecipeError
	if stderrors.As(err, &rErr) {
		event := log.Error().Str("error_type", string(rErr.Type))
		for key, value := range rErr.Context {
			event = event.Interface(key, value)
		}
		if rErr.Cause != nil {
			event = event.Err(rErr.Cause)
		}
		event.Msg(rErr.Message)
		return
	}

	log.Error().Err(err).Msg("")
}

// DebugInfo returns detailed error information for debugging
func DebugInfo(err error) map[string]interface{} {
	info := map[string]interface{}{
		"error":   err.Error(),
		"type":    "unknown",
		"context": map[string]interface{}{},
	}

	var rErr *RecipeError
	if stderrors.As(err, &rErr) {
		info["type"] = string(rErr.Type)
		info["message"] = rErr.Message
		info["context"] = rErr.Context

		if rErr.Cause != nil {
			info["cause"] = rErr.Cause.Error()
		}
	}

	return info
}
