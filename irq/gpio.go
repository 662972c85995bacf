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

// Package irq exposes the controller's attention line as an interrupt
// source. The ILI2117 pulls its INT line low when a touch report is ready;
// each falling edge should trigger exactly one scheduling request on the
// acquisition loop.
package irq

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgePollTimeout bounds each edge wait so Close can stop the watch
// goroutine without an edge ever arriving.
const edgePollTimeout = 500 * time.Millisecond

// Line is a GPIO interrupt line configured for falling-edge detection.
type Line struct {
	pin    gpio.PinIn
	name   string
	wg     sync.WaitGroup
	closed atomic.Bool
}

// Open configures the named GPIO pin (e.g. "GPIO27") as a pulled-up,
// falling-edge interrupt input.
func Open(name string) (*Line, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", name)
	}
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("failed to configure %s as interrupt input: %w", name, err)
	}

	return &Line{pin: pin, name: name}, nil
}

// Watch invokes fn on every falling edge until the line is closed. fn runs
// on the watch goroutine and must return promptly; defer real work to a
// worker (the acquirer's Interrupt method satisfies this).
func (l *Line) Watch(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for !l.closed.Load() {
			if l.pin.WaitForEdge(edgePollTimeout) {
				fn()
			}
		}
	}()
}

// Name returns the pin name the line was opened with.
func (l *Line) Name() string {
	return l.name
}

// Close stops edge delivery and waits for the watch goroutine to exit.
// After Close returns, fn is never called again.
func (l *Line) Close() error {
	if l.closed.CompareAndSwap(false, true) {
		l.pin.Halt() //nolint:errcheck // best-effort wakeup of a blocked edge wait
	}
	l.wg.Wait()
	return nil
}
