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

// Package polling implements the interrupt-driven acquisition loop for the
// ILI2117: a single worker performs every read, decode and tracker update,
// while interrupt sources only ever request (re)scheduling through a
// coalescing wake channel.
package polling

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	ili2117 "github.com/touchkit/go-ili2117"
)

// EventSink receives, per acquisition cycle, the full ordered 10-slot
// snapshot plus a derived "any finger currently touching" flag for
// pointer-emulation style consumers. Called from the acquisition worker;
// implementations must not block for long or they stall polling.
type EventSink interface {
	Contacts(events []ili2117.SlotEvent, anyTouching bool)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(events []ili2117.SlotEvent, anyTouching bool)

// Contacts implements EventSink
func (f SinkFunc) Contacts(events []ili2117.SlotEvent, anyTouching bool) {
	f(events, anyTouching)
}

// Metrics tracks operational metrics for the Acquirer
type Metrics struct {
	ReadCycles      int64         // Total number of read cycles attempted
	ReadErrors      int64         // Number of abandoned cycles (transport or decode failure)
	FramesValid     int64         // Number of frames that carried touch data
	LastReadLatency time.Duration // Duration of the last transport read
}

// Acquirer orchestrates the acquisition cycle: interrupt wakes the worker,
// the worker reads a frame through the device, decodes it, feeds the
// contact tracker, emits slot events to the sink, and asks the scheduler
// whether to read again.
//
// Exactly one read/decode/update cycle executes at a time by construction:
// the worker goroutine owns the tracker and scheduler outright, so no locks
// guard them. Interrupt handlers only poke the capacity-1 wake channel.
type Acquirer struct {
	device  *ili2117.Device
	config  *Config
	sink    EventSink
	tracker *ili2117.Tracker
	sched   *Scheduler

	wakeChan chan struct{} // capacity 1: coalesces interrupt requests
	stopChan chan struct{}
	wg       sync.WaitGroup // Tracks the worker goroutine lifecycle

	// Atomic counters for metrics
	readCycles      int64
	readErrors      int64
	framesValid     int64
	lastReadLatency int64 // in nanoseconds

	running   atomic.Bool
	suspended atomic.Bool
}

// NewAcquirer creates an acquirer for the given device. A nil config uses
// DefaultConfig; a nil sink discards events (useful for tests that only
// inspect metrics).
func NewAcquirer(device *ili2117.Device, config *Config, sink EventSink) *Acquirer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Acquirer{
		device:   device,
		config:   config,
		sink:     sink,
		tracker:  ili2117.NewTracker(),
		sched:    NewScheduler(config.PollInterval),
		wakeChan: make(chan struct{}, 1),
		stopChan: make(chan struct{}, 1), // Buffered to prevent deadlock in Stop()
	}
}

// Interrupt requests an immediate read. Safe to call from any goroutine,
// including interrupt edge handlers: it never blocks and returns promptly.
// Multiple interrupts before the read executes collapse into one.
func (a *Acquirer) Interrupt() {
	if a.suspended.Load() {
		return
	}
	select {
	case a.wakeChan <- struct{}{}:
	default:
		// A wake is already pending; coalesce.
	}
}

// Start launches the acquisition worker. Idempotent.
func (a *Acquirer) Start(_ context.Context) error {
	if a.running.CompareAndSwap(false, true) {
		a.wg.Add(1)
		go a.run()
	}
	return nil
}

// Stop halts the acquisition loop and waits for the worker to exit. Any
// in-flight read/decode/update cycle completes (and its events are emitted)
// before Stop returns, so no decode ever executes against freed state.
// Idempotent.
func (a *Acquirer) Stop(_ context.Context) error {
	if a.running.CompareAndSwap(true, false) {
		select {
		case a.stopChan <- struct{}{}:
		default:
		}
	}
	a.wg.Wait()
	return nil
}

// Suspend disarms scheduling: interrupts are ignored and any pending read
// is dropped, while the worker stays alive. Idempotent. Mirrors the
// controller's power-management suspend hook.
func (a *Acquirer) Suspend() {
	a.suspended.Store(true)
}

// Resume re-arms the acquirer after Suspend. The next interrupt starts a
// fresh cycle. Idempotent.
func (a *Acquirer) Resume() {
	a.suspended.Store(false)
}

// GetMetrics returns current operational metrics
func (a *Acquirer) GetMetrics() Metrics {
	return Metrics{
		ReadCycles:      atomic.LoadInt64(&a.readCycles),
		ReadErrors:      atomic.LoadInt64(&a.readErrors),
		FramesValid:     atomic.LoadInt64(&a.framesValid),
		LastReadLatency: time.Duration(atomic.LoadInt64(&a.lastReadLatency)),
	}
}

// run is the single worker that serializes every read/decode/update cycle.
func (a *Acquirer) run() {
	defer a.wg.Done()

	// One timer carries both the zero-delay interrupt read and the periodic
	// continuation read; the scheduler guarantees it is re-armed only while
	// unarmed, so no drain dance is needed after Reset.
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		// Check stop first so a pending wake or due timer cannot starve
		// shutdown.
		select {
		case <-a.stopChan:
			return
		default:
		}

		select {
		case <-a.stopChan:
			return
		case <-a.wakeChan:
			if a.suspended.Load() {
				a.sched.Reset()
				continue
			}
			if delay, ok := a.sched.RequestRead(); ok {
				timer.Reset(delay)
			}
		case <-timer.C:
			if a.suspended.Load() {
				a.sched.Reset()
				continue
			}
			if delay, again := a.performRead(); again {
				timer.Reset(delay)
			}
		}
	}
}

// performRead executes one acquisition cycle and reports whether (and when)
// the scheduler wants another read.
func (a *Acquirer) performRead() (time.Duration, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.ReadTimeout)
	start := time.Now()
	frame, err := a.device.ReadFrame(ctx)
	cancel()

	atomic.AddInt64(&a.readCycles, 1)
	atomic.StoreInt64(&a.lastReadLatency, time.Since(start).Nanoseconds())

	if err != nil {
		// Abandon the cycle: no contact updates, no implicit retry. The
		// next interrupt re-arms the loop.
		atomic.AddInt64(&a.readErrors, 1)
		ili2117.Debugf("read cycle abandoned: %v", err)
		a.sched.ReadFailed()
		return 0, false
	}

	if frame.Valid() {
		atomic.AddInt64(&a.framesValid, 1)
	}

	events := a.tracker.Update(frame)
	if a.sink != nil {
		a.sink.Contacts(events, a.tracker.AnyTouching())
	}

	return a.sched.ReadCompleted(frame)
}
