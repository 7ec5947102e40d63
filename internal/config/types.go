// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/envinject/pkg/types"
)

const (
	// ModeFunction injects into function environments, and into the provider
	// environment only when inject_provider_env is enabled.
	ModeFunction Mode = "function"
	// ModeProvider always injects into the provider environment.
	ModeProvider Mode = "provider"

	// DefaultStage is used when neither a flag nor the service names a stage.
	DefaultStage Stage = "development"
)

var (
	// ErrInvalidMode is returned when a Mode value is not recognized.
	ErrInvalidMode = errors.New("invalid injection mode")
	// ErrInvalidFilePath is the sentinel error wrapped by InvalidFilePathError.
	ErrInvalidFilePath = errors.New("invalid file path")
	// ErrInvalidKeyList is the sentinel error wrapped by InvalidKeyListError.
	ErrInvalidKeyList = errors.New("invalid key list")
	// ErrInvalidOptions is the sentinel error wrapped by InvalidOptionsError.
	ErrInvalidOptions = errors.New("invalid injection options")
)

type (
	// Mode selects which destinations receive the loaded variables.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	// It wraps ErrInvalidMode for errors.Is() compatibility.
	InvalidModeError struct {
		Value Mode
	}

	// Stage names a deployment stage. It selects the staged dotenv file.
	Stage string

	// InvalidFilePathError is returned when a path or base_path option is
	// set to a whitespace-only value.
	InvalidFilePathError struct {
		Field string
		Value string
	}

	// InvalidKeyListError is returned when an include or exclude entry is not
	// a usable variable name.
	InvalidKeyListError struct {
		Field string
		Index int
		Err   error
	}

	// InvalidOptionsError aggregates every field error found while validating
	// Settings. It wraps ErrInvalidOptions for errors.Is() compatibility.
	InvalidOptionsError struct {
		FieldErrors []error
	}
)

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// Validate returns an error if the Mode is not one of the defined modes.
func (m Mode) Validate() error {
	switch m {
	case ModeFunction, ModeProvider:
		return nil
	default:
		return &InvalidModeError{Value: m}
	}
}

// Error implements the error interface for InvalidModeError.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid injection mode %q (valid: function, provider)", e.Value)
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// String returns the string representation of the Stage.
func (s Stage) String() string { return string(s) }

// OrDefault returns s, or DefaultStage when s is empty or whitespace-only.
func (s Stage) OrDefault() Stage {
	if strings.TrimSpace(string(s)) == "" {
		return DefaultStage
	}
	return s
}

// Error implements the error interface for InvalidFilePathError.
func (e *InvalidFilePathError) Error() string {
	return fmt.Sprintf("invalid %s %q: non-empty value must not be whitespace-only", e.Field, e.Value)
}

// Unwrap returns ErrInvalidFilePath for errors.Is() compatibility.
func (e *InvalidFilePathError) Unwrap() error { return ErrInvalidFilePath }

// Error implements the error interface for InvalidKeyListError.
func (e *InvalidKeyListError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Field, e.Index, e.Err)
}

// Unwrap returns both ErrInvalidKeyList and the underlying name error.
func (e *InvalidKeyListError) Unwrap() []error { return []error{ErrInvalidKeyList, e.Err} }

// Error implements the error interface for InvalidOptionsError.
func (e *InvalidOptionsError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid injection options: %v", e.FieldErrors[0])
	}
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid injection options: %d field error(s): %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidOptions followed by the field errors, so
// errors.Is matches both the aggregate and individual sentinels.
func (e *InvalidOptionsError) Unwrap() []error {
	return append([]error{ErrInvalidOptions}, e.FieldErrors...)
}

func validatePath(field, value string) error {
	if value != "" && strings.TrimSpace(value) == "" {
		return &InvalidFilePathError{Field: field, Value: value}
	}
	return nil
}

func validateKeys(field string, keys []string) []error {
	var errs []error
	for i, key := range keys {
		if err := types.EnvVarName(key).Validate(); err != nil {
			errs = append(errs, &InvalidKeyListError{Field: field, Index: i, Err: err})
		}
	}
	return errs
}
