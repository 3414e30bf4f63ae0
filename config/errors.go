package config

import (
	"net/http"

	"github.com/AliGym19/voiceverse-sub001/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	errCodeLoad       = 1
	errCodeValidation = 2
)

var (
	// ErrLoad means the configuration file could not be read or parsed.
	ErrLoad = errcode.New(
		errcode.ModuleConfig, errCodeLoad,
		"config", "configuration load failed",
		http.StatusInternalServerError,
	)

	// ErrValidation carries field-level validation failures in Data.
	ErrValidation = errcode.New(
		errcode.ModuleConfig, errCodeValidation,
		"config", "configuration validation failed",
		http.StatusBadRequest,
	)
)

// convertValidationError flattens ozzo-validation errors into a single
// LayeredError with a field→message map in Data.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validation.Errors)
	if !ok {
		return ErrValidation.Wrap(err)
	}

	fields := make(map[string]string, len(validationErrs))
	flattenFields("", validationErrs, fields)
	return ErrValidation.WithData("fields", fields)
}

func flattenFields(prefix string, errs validation.Errors, out map[string]string) {
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}
		if nested, ok := fieldErr.(validation.Errors); ok {
			flattenFields(name, nested, out)
			continue
		}
		out[name] = fieldErr.Error()
	}
}
