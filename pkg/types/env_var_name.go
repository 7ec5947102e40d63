// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidEnvVarName is the sentinel error wrapped by InvalidEnvVarNameError.
var ErrInvalidEnvVarName = errors.New("invalid environment variable name")

type (
	// EnvVarName is the name of an environment variable as it appears on the
	// left-hand side of a dotenv assignment. Names are case-sensitive.
	// A valid name is non-empty and contains neither '=' nor whitespace.
	EnvVarName string

	// InvalidEnvVarNameError is returned when an EnvVarName fails validation.
	// It wraps ErrInvalidEnvVarName for errors.Is() compatibility.
	InvalidEnvVarNameError struct {
		Value  EnvVarName
		Reason string
	}
)

// String returns the string representation of the EnvVarName.
func (n EnvVarName) String() string { return string(n) }

// Validate returns an error if the name is empty or contains '=' or whitespace.
func (n EnvVarName) Validate() error {
	if n == "" {
		return &InvalidEnvVarNameError{Value: n, Reason: "must be non-empty"}
	}
	if strings.ContainsRune(string(n), '=') {
		return &InvalidEnvVarNameError{Value: n, Reason: "must not contain '='"}
	}
	if strings.IndexFunc(string(n), unicode.IsSpace) >= 0 {
		return &InvalidEnvVarNameError{Value: n, Reason: "must not contain whitespace"}
	}
	return nil
}

// Error implements the error interface for InvalidEnvVarNameError.
func (e *InvalidEnvVarNameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidEnvVarName for errors.Is() compatibility.
func (e *InvalidEnvVarNameError) Unwrap() error { return ErrInvalidEnvVarName }
