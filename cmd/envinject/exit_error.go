// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/invowk/envinject/pkg/types"
)

// ExitError carries the process exit status out of a command handler. Err
// is what gets rendered; a nil Err means the failure was already printed.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// usageError marks err as a command-line or configuration mistake.
func usageError(err error) *ExitError {
	return &ExitError{Code: types.ExitUsage, Err: err}
}

// exitCodeOf returns the exit status for err: the code of the first
// ExitError in its chain, ExitFailure for any other error, ExitSuccess for nil.
func exitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}
