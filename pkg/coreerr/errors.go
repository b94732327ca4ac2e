// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package coreerr defines the closed set of error kinds surfaced across the
// agent runtime, from skill validation through sandbox execution.
package coreerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a runtime Error. The set is closed: callers
// may safely switch over every Kind without a default case.
type Kind string

const (
	// KindValidation marks malformed input: bad skill definitions, schema
	// violations, or malformed requests.
	KindValidation Kind = "validation"

	// KindManagerClosed marks an operation attempted against a Manager that
	// has already been shut down.
	KindManagerClosed Kind = "manager_closed"

	// KindSkillNotFound marks a reference to a skill name the registry does
	// not know about.
	KindSkillNotFound Kind = "skill_not_found"

	// KindPlanning marks a failure in the PTC planning phase.
	KindPlanning Kind = "planning"

	// KindSynthesis marks a failure in the PTC code-synthesis phase.
	KindSynthesis Kind = "synthesis"

	// KindTimeout marks a context deadline exceeded while executing or
	// waiting on a sandboxed operation.
	KindTimeout Kind = "timeout"

	// KindExecution marks a sandbox run that failed once started: non-zero
	// exit, panic, or killed process.
	KindExecution Kind = "execution"

	// KindLLM marks a failure returned by, or while talking to, an LLM
	// provider.
	KindLLM Kind = "llm"

	// KindInternal marks a failure that should not be possible given the
	// invariants of this module: a bug, not a caller error.
	KindInternal Kind = "internal"
)

// Error is the concrete error type for failures that carry a Kind, so
// callers can branch on failure category without string matching.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given Kind with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error of the given Kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given Kind around an underlying cause. If err
// is nil, Wrap returns nil so it is safe to use as `return coreerr.Wrap(...)`
// in error-propagation chains.
func Wrap(kind Kind, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of err. If err is nil or not a *Error, it
// returns KindInternal and false.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindInternal, false
}
