// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/invowk/envinject/internal/issue"
)

// ServiceError is a failure raised while preparing or running a lifecycle
// trigger, annotated for display: StyledMessage is printed under the error
// line, followed by the issue catalog entry for IssueID. Always create via
// newServiceError, asServiceError or newStrictError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// asServiceError wraps err in a ServiceError carrying the issue id found on
// its chain. Nil stays nil.
func asServiceError(err error) error {
	if err == nil {
		return nil
	}
	return newServiceError(err, issue.IssueOf(err), "")
}

// strictHint explains why a dotenv load failure stopped the command.
const strictHint = "--strict is set, so an unreadable dotenv file fails the command.\n" +
	"Drop --strict to continue with the descriptor's own environment.\n"

// newStrictError annotates a dotenv load failure that --strict promoted to
// a failing exit.
func newStrictError(err error) *ServiceError {
	return newServiceError(err, issue.IssueOf(err), WarningStyle.Render(strictHint))
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints the styled message, then the catalog entry. A
// catalog entry that fails to render is logged and skipped.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}
