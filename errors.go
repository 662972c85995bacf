// Copyright 2026 The go-ili2117 Authors.
// SPDX-License-Identifier: Apache-2.0
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

package ili2117

import (
	"errors"
	"fmt"
)

// Error categories for better error handling and retry logic
var (
	// Transport errors - potentially retryable
	ErrTransportTimeout  = errors.New("transport timeout")
	ErrTransportRead     = errors.New("transport read failed")
	ErrTransportClosed   = errors.New("transport is closed")
	ErrTransportNotReady = errors.New("transport not ready")

	// Integration errors - not retryable. A frame of the wrong size means
	// the transport is misconfigured, never that the sensor sent bad data.
	ErrFrameSize = errors.New("frame size mismatch")

	// Device errors - generally not retryable
	ErrDeviceClosed     = errors.New("device is closed")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrorType represents the category of error for retry logic
type ErrorType int

const (
	// ErrorTypeTransient indicates a potentially retryable error
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates a non-retryable error
	ErrorTypePermanent
	// ErrorTypeTimeout indicates a timeout error (special handling)
	ErrorTypeTimeout
)

// TransportError wraps transport-level errors with additional context
type TransportError struct {
	Err       error     // Underlying error
	Op        string    // Operation that failed
	Port      string    // Bus or device identifier
	Type      ErrorType // Error category
	Retryable bool      // Whether the error is retryable
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FrameSizeError reports a transport read that did not produce exactly
// FrameSize bytes. It unwraps to ErrFrameSize and is never retryable: it
// signals a misconfiguration at the integration boundary, so it must
// propagate to the caller rather than be truncated or padded away.
type FrameSizeError struct {
	Op  string
	Got int
}

func (e *FrameSizeError) Error() string {
	return fmt.Sprintf("%s: frame size mismatch: got %d bytes, want %d", e.Op, e.Got, FrameSize)
}

func (*FrameSizeError) Unwrap() error {
	return ErrFrameSize
}

// NewFrameSizeError creates a FrameSizeError for the given operation.
func NewFrameSizeError(op string, got int) error {
	return &FrameSizeError{Op: op, Got: got}
}

// NewTransportReadError creates a retryable read failure error.
func NewTransportReadError(op, port string, err error) error {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       fmt.Errorf("%w: %w", ErrTransportRead, err),
		Type:      ErrorTypeTransient,
		Retryable: true,
	}
}

// NewTransportTimeoutError creates a timeout error for the given operation.
func NewTransportTimeoutError(op, port string) error {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       ErrTransportTimeout,
		Type:      ErrorTypeTimeout,
		Retryable: true,
	}
}

// NewTransportClosedError creates an error for operations on a closed transport.
func NewTransportClosedError(op, port string) error {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       ErrTransportClosed,
		Type:      ErrorTypePermanent,
		Retryable: false,
	}
}

// NewTransportNotReadyError creates an error for a transport that is not
// ready to serve reads yet.
func NewTransportNotReadyError(op, port string) error {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       ErrTransportNotReady,
		Type:      ErrorTypeTransient,
		Retryable: true,
	}
}

// IsRetryable returns true if the error is potentially retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportNotReady):
		return true
	default:
		return false
	}
}

// GetErrorType returns the error category for the given error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead), errors.Is(err, ErrTransportNotReady):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
