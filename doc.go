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

/*
Package ili2117 provides a pure Go driver for the Ilitek ILI2117 capacitive
touch controller.

The ILI2117 reports up to 10 simultaneous finger contacts over I2C as a
fixed-size 53-byte frame. This library decodes those frames, tracks contact
slot state across reads, and drives the interrupt-plus-poll acquisition cycle
the controller expects: read immediately when the interrupt line fires, then
keep polling at a fixed interval for as long as the controller streams
touch-class frames.

Features:
  - Fixed-layout frame codec with explicit bit-field extraction
  - Per-slot contact tracking with full 10-slot snapshots every cycle
  - Interrupt-driven, self-terminating poll loop on a single worker
  - periph.io I2C transport and GPIO interrupt line adapters
  - Linux uinput event sink for feeding the input subsystem
  - Retry helpers with configurable backoff for flaky buses
  - Comprehensive error taxonomy with retryability classification

Basic usage:

	import (
	    ili2117 "github.com/touchkit/go-ili2117"
	    "github.com/touchkit/go-ili2117/polling"
	    "github.com/touchkit/go-ili2117/transport/i2c"
	)

	transport, err := i2c.New("/dev/i2c-1")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	device, err := ili2117.New(transport)
	if err != nil {
	    log.Fatal(err)
	}

	acq := polling.NewAcquirer(device, nil, polling.SinkFunc(
	    func(events []ili2117.SlotEvent, touching bool) {
	        // consume contact events
	    }))
	_ = acq.Start(context.Background())
	defer acq.Stop(context.Background())

	// Wire acq.Interrupt to the controller's interrupt line, e.g. with
	// the irq package.
*/
package ili2117
