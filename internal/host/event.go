// SPDX-License-Identifier: MPL-2.0

package host

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/envinject/internal/config"
	"github.com/invowk/envinject/internal/issue"
)

const (
	// EventPackageInitialize fires once before packaging and covers every
	// function of the service.
	EventPackageInitialize Event = "package:initialize"
	// EventInvokeLocalLoadEnvVars fires when a single function is invoked
	// locally.
	EventInvokeLocalLoadEnvVars Event = "invoke:local:loadEnvVars"
)

var (
	// ErrUnknownEvent is returned when an Event value is not recognized.
	ErrUnknownEvent = errors.New("unknown lifecycle event")
	// ErrFunctionNotFound is returned when the requested function is not declared.
	ErrFunctionNotFound = errors.New("function not found")
)

type (
	// Event is a lifecycle hook name.
	Event string

	// UnknownEventError is returned when an Event value is not recognized.
	// It wraps ErrUnknownEvent for errors.Is() compatibility.
	UnknownEventError struct {
		Value Event
	}

	// FunctionNotFoundError is returned when a function name is not declared
	// on the service. It wraps ErrFunctionNotFound.
	FunctionNotFoundError struct {
		Name      string
		Available []string
	}

	// Invocation is what the host hands a plugin for one lifecycle trigger.
	Invocation struct {
		Service *Service
		Stage   config.Stage
	}

	// Plugin receives lifecycle triggers. There is one method per Event.
	Plugin interface {
		// PackageInitialize handles EventPackageInitialize.
		PackageInitialize(ctx context.Context, inv Invocation) error
		// InvokeLocalLoadEnvVars handles EventInvokeLocalLoadEnvVars for fn.
		InvokeLocalLoadEnvVars(ctx context.Context, inv Invocation, fn *Function) error
	}
)

// Events returns every lifecycle event in firing order.
func Events() []Event {
	return []Event{EventPackageInitialize, EventInvokeLocalLoadEnvVars}
}

// String returns the string representation of the Event.
func (e Event) String() string { return string(e) }

// Validate returns an error if the Event is not a known lifecycle event.
func (e Event) Validate() error {
	switch e {
	case EventPackageInitialize, EventInvokeLocalLoadEnvVars:
		return nil
	default:
		return &UnknownEventError{Value: e}
	}
}

// Error implements the error interface for UnknownEventError.
func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown lifecycle event %q (valid: %s, %s)", e.Value, EventPackageInitialize, EventInvokeLocalLoadEnvVars)
}

// Unwrap returns ErrUnknownEvent for errors.Is() compatibility.
func (e *UnknownEventError) Unwrap() error { return ErrUnknownEvent }

// Error implements the error interface for FunctionNotFoundError.
func (e *FunctionNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("function %q not found: the service declares no functions", e.Name)
	}
	return fmt.Sprintf("function %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Unwrap returns ErrFunctionNotFound for errors.Is() compatibility.
func (e *FunctionNotFoundError) Unwrap() error { return ErrFunctionNotFound }

// Dispatch delivers event to p. fnName selects the function for
// EventInvokeLocalLoadEnvVars and is ignored otherwise. Unknown events and
// unknown functions are host errors and are returned as
// *issue.ActionableError; errors from p are returned unchanged.
func Dispatch(ctx context.Context, p Plugin, event Event, inv Invocation, fnName string) error {
	if err := event.Validate(); err != nil {
		return issue.NewErrorContext().
			WithOperation("dispatch lifecycle event").
			WithResource(event.String()).
			WithIssue(issue.UnknownEventId).
			Wrap(err).
			BuildError()
	}

	switch event {
	case EventPackageInitialize:
		return p.PackageInitialize(ctx, inv)
	default:
		fn := inv.Service.Function(fnName)
		if fn == nil {
			return issue.NewErrorContext().
				WithOperation("dispatch lifecycle event").
				WithResource(fnName).
				WithIssue(issue.FunctionNotFoundId).
				WithSuggestion("Check the function name against the service descriptor").
				Wrap(&FunctionNotFoundError{Name: fnName, Available: inv.Service.FunctionNames()}).
				BuildError()
		}
		return p.InvokeLocalLoadEnvVars(ctx, inv, fn)
	}
}
