// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotInstalled
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotPulled
	ErrTypeCommandFailed
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// RunnerError is returned by Runner when invoking the ollama binary fails.
type RunnerError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *RunnerError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RunnerError) Unwrap() error {
	return e.Cause
}

// Is matches any RunnerError of the same type, so wrapped instances
// compare equal to the sentinels.
func (e *RunnerError) Is(target error) bool {
	t, ok := target.(*RunnerError)
	return ok && t.Type == e.Type
}

// ClientError is returned by Client when the HTTP API fails.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches any ClientError of the same type.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Type == e.Type
}

// Sentinel errors for easy checking.
var (
	ErrNotInstalled   = &RunnerError{Type: ErrTypeNotInstalled, Message: "ollama binary not found (is Ollama installed?)"}
	ErrTimeout        = &RunnerError{Type: ErrTypeTimeout, Message: "ollama command timed out"}
	ErrModelNotPulled = &RunnerError{Type: ErrTypeModelNotPulled, Message: "model is not pulled locally"}

	ErrNotRunning     = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrRequestTimeout = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsNotInstalled checks if an error means the binary is missing.
func IsNotInstalled(err error) bool {
	return errors.Is(err, ErrNotInstalled)
}

// IsNotRunning checks if an error indicates the server is not running.
func IsNotRunning(err error) bool {
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a command or request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRequestTimeout)
}
