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
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// RetryConfig configures retry behavior when the transport is wrapped
	// with retries
	RetryConfig *RetryConfig
	// Timeout is the default timeout for a single frame read
	Timeout time.Duration
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		RetryConfig: DefaultRetryConfig(),
		Timeout:     100 * time.Millisecond,
	}
}

// Device represents an ILI2117 touch controller.
//
// Thread Safety: Device is NOT thread-safe. All methods must be called from
// a single goroutine or protected with external synchronization. The polling
// acquirer satisfies this by serializing every read onto one worker.
type Device struct {
	transport Transport
	config    *DeviceConfig
}

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithTimeout sets the default frame read timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidParameter, timeout)
		}
		d.config.Timeout = timeout
		return nil
	}
}

// WithRetryConfig sets the retry configuration and wraps the transport with
// retry logic.
func WithRetryConfig(config *RetryConfig) Option {
	return func(d *Device) error {
		if config == nil {
			return fmt.Errorf("%w: retry config must not be nil", ErrInvalidParameter)
		}
		d.config.RetryConfig = config
		d.transport = NewTransportWithRetry(d.transport, config)
		return nil
	}
}

// New creates a new ILI2117 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	if device.config.Timeout > 0 {
		if err := transport.SetTimeout(device.config.Timeout); err != nil {
			return nil, fmt.Errorf("failed to set transport timeout: %w", err)
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// SetTimeout sets the default timeout for frame reads
func (d *Device) SetTimeout(timeout time.Duration) error {
	d.config.Timeout = timeout
	if err := d.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// ReadFrame reads and decodes one touch report from the controller. The
// transport read is bounded by ctx; decoding itself never fails on frame
// content, only on a wrong-sized read.
func (d *Device) ReadFrame(ctx context.Context) (*TouchFrame, error) {
	buf, err := d.transport.ReadFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("frame read failed: %w", err)
	}
	return DecodeFrame(buf)
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}
