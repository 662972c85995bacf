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

// Package i2c provides the I2C transport implementation for the ILI2117
package i2c

import (
	"context"
	"fmt"
	"strings"
	"time"

	ili2117 "github.com/touchkit/go-ili2117"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddr is the 7-bit I2C address the ILI2117 evaluation boards
	// strap. Production boards may strap a different address; use
	// NewWithAddress for those.
	DefaultAddr = 0x26

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz
)

// Transport implements the ili2117.Transport interface for I2C communication
type Transport struct {
	dev     *i2c.Dev
	bus     i2c.BusCloser // Held so Close() can release the OS file descriptor
	busName string
	timeout time.Duration
}

// parseI2CPath extracts the bus path from a composite device path.
// Accepts "/dev/i2c-1:0x26" or a bare "/dev/i2c-1".
func parseI2CPath(path string) string {
	bus, _, _ := strings.Cut(path, ":")
	return bus
}

// New creates a new I2C transport on the given bus using DefaultAddr.
func New(busName string) (*Transport, error) {
	return NewWithAddress(busName, DefaultAddr)
}

// NewWithAddress creates a new I2C transport for a controller strapped to a
// non-default address.
func NewWithAddress(busName string, addr uint16) (*Transport, error) {
	// Initialize host
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	// Open I2C bus (strip address suffix from composite paths)
	bus, err := i2creg.Open(parseI2CPath(busName))
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	dev := &i2c.Dev{Addr: addr, Bus: bus}

	// Set maximum frequency
	_ = bus.SetSpeed(maxClockFreq) // Ignore error, continue with default speed

	return &Transport{
		dev:     dev,
		bus:     bus,
		busName: busName,
		timeout: 100 * time.Millisecond,
	}, nil
}

// ReadFrame reads one 53-byte touch report in a single bus transaction.
// The controller restarts its report buffer on every new read transaction,
// so the whole frame must come from one Tx; splitting it would re-read from
// byte 0 and corrupt the tail.
func (t *Transport) ReadFrame(ctx context.Context) ([]byte, error) {
	if t.dev == nil {
		return nil, ili2117.NewTransportClosedError("ReadFrame", t.busName)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, ili2117.FrameSize)
	if err := t.dev.Tx(nil, buf); err != nil {
		return nil, ili2117.NewTransportReadError("ReadFrame", t.busName, err)
	}
	return buf, nil
}

// SetTimeout sets the read timeout for the transport. The kernel owns the
// actual bus-level timeout; this value only bounds how long callers should
// expect a read to take.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// Close closes the transport connection and releases the I2C bus file
// descriptor. Must be called when the transport is no longer needed to
// prevent file descriptor leaks on rapid destroy/recreate cycles.
func (t *Transport) Close() error {
	if t.bus != nil {
		if err := t.bus.Close(); err != nil {
			return fmt.Errorf("failed to close I2C bus: %w", err)
		}
		t.bus = nil
		t.dev = nil // IsConnected() returns false after Close
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	return t.dev != nil
}

// Type returns the transport type
func (*Transport) Type() ili2117.TransportType {
	return ili2117.TransportI2C
}

// Ensure Transport implements ili2117.Transport
var _ ili2117.Transport = (*Transport)(nil)
