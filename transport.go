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
	"context"
	"fmt"
	"time"

	"github.com/touchkit/go-ili2117/internal/syncutil"
)

// Transport defines the interface for reading touch reports from an ILI2117
// controller. This can be implemented by I2C or simulated backends.
type Transport interface {
	// ReadFrame reads one fixed-size touch report from the controller.
	// A successful read returns exactly FrameSize bytes; anything shorter
	// is a transport error, never a partial frame. The read blocks up to
	// the bus timeout, shortened by ctx if it expires first.
	ReadFrame(ctx context.Context) ([]byte, error)

	// Close closes the transport connection
	Close() error

	// SetTimeout sets the read timeout for the transport
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportI2C represents I2C bus transport.
	TransportI2C TransportType = "i2c"
	// TransportMock represents a simulated transport for testing
	TransportMock TransportType = "mock"
)

// TransportWithRetry wraps a Transport with retry capabilities.
//
// Retry is strictly opt-in: the acquisition loop never retries a failed
// cycle on its own (a failed read abandons the cycle until the next
// interrupt), so wrap the transport only when the bus itself is flaky
// enough to warrant it.
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// ReadFrame reads one touch report with retry logic
func (t *TransportWithRetry) ReadFrame(ctx context.Context) ([]byte, error) {
	var result []byte
	err := RetryWithConfig(ctx, t.config, func() error {
		var err error
		result, err = t.transport.ReadFrame(ctx)
		if err != nil {
			return &TransportError{
				Op:        "ReadFrame",
				Err:       err,
				Type:      GetErrorType(err),
				Retryable: IsRetryable(err),
			}
		}
		return nil
	})
	return result, err
}

// Close closes the transport connection
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// SetTimeout sets the read timeout for the transport
func (t *TransportWithRetry) SetTimeout(timeout time.Duration) error {
	if err := t.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on underlying transport: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the transport type
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// SetRetryConfig updates the retry configuration
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}

// MockTransport provides a simulated Transport for testing. Reads serve
// queued frames in order, then keep serving the last configured frame.
type MockTransport struct {
	err       error
	frame     []byte
	queue     [][]byte
	timeout   time.Duration
	delay     time.Duration
	readCount int
	mu        syncutil.RWMutex
	connected bool
}

// NewMockTransport creates a new mock transport serving all-released
// non-touch frames until configured otherwise.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		connected: true,
		timeout:   time.Second,
		frame:     make([]byte, FrameSize),
	}
}

// ReadFrame implements Transport
func (m *MockTransport) ReadFrame(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	connected := m.connected
	delay := m.delay
	m.mu.RUnlock()

	if !connected {
		return nil, NewTransportClosedError("ReadFrame", "mock")
	}

	// Simulate bus latency if configured, honoring cancellation
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.readCount++

	if m.err != nil {
		return nil, m.err
	}

	if len(m.queue) > 0 {
		m.frame = m.queue[0]
		m.queue = m.queue[1:]
	}

	out := make([]byte, len(m.frame))
	copy(out, m.frame)
	return out, nil
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	return nil
}

// SetTimeout implements Transport
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	m.timeout = timeout
	m.mu.Unlock()
	return nil
}

// IsConnected implements Transport
func (m *MockTransport) IsConnected() bool {
	m.mu.RLock()
	connected := m.connected
	m.mu.RUnlock()
	return connected
}

// Type implements Transport
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Test helper methods

// SetFrame configures the raw bytes every subsequent read returns.
func (m *MockTransport) SetFrame(frame []byte) {
	m.mu.Lock()
	m.frame = frame
	m.mu.Unlock()
}

// QueueFrames configures a sequence of raw reads to serve in order. After
// the queue drains, the last frame keeps being served.
func (m *MockTransport) QueueFrames(frames ...[]byte) {
	m.mu.Lock()
	m.queue = append(m.queue, frames...)
	m.mu.Unlock()
}

// SetError configures an error to be returned by every read.
func (m *MockTransport) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// ClearError removes error injection.
func (m *MockTransport) ClearError() {
	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
}

// SetDelay configures a delay to simulate bus response time
func (m *MockTransport) SetDelay(delay time.Duration) {
	m.mu.Lock()
	m.delay = delay
	m.mu.Unlock()
}

// ReadCount returns how many reads were performed
func (m *MockTransport) ReadCount() int {
	m.mu.RLock()
	count := m.readCount
	m.mu.RUnlock()
	return count
}

// Reset clears the read count and reconnects the transport
func (m *MockTransport) Reset() {
	m.mu.Lock()
	m.readCount = 0
	m.connected = true
	m.mu.Unlock()
}
