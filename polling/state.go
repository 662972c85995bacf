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

package polling

import (
	"time"

	ili2117 "github.com/touchkit/go-ili2117"
)

// PollState is the finite state machine governing whether another
// controller read is pending.
type PollState int

const (
	// StateIdle means no read is pending; only an interrupt re-arms the loop.
	StateIdle PollState = iota
	// StateScheduled means exactly one read is pending.
	StateScheduled
	// StateActive means the controller is streaming touch-class frames and
	// the next periodic read is pending.
	StateActive
)

func (s PollState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Scheduler decides when the next controller read happens: immediately on an
// interrupt, then periodically for as long as decoded frames identify
// themselves as touch data, stopping once the controller signals it has
// nothing further to send.
//
// Scheduler is not safe for concurrent use; the acquirer's worker owns it.
type Scheduler struct {
	interval time.Duration
	state    PollState
}

// NewScheduler creates a scheduler with the given poll interval.
func NewScheduler(interval time.Duration) *Scheduler {
	return &Scheduler{interval: interval}
}

// State returns the current poll state.
func (s *Scheduler) State() PollState {
	return s.state
}

// RequestRead handles an interrupt. It returns the delay before the next
// read and whether a read should actually be scheduled. Interrupts that
// arrive while a read is already pending are coalesced: at most one read is
// ever outstanding, so ok is false and the caller must not schedule.
func (s *Scheduler) RequestRead() (delay time.Duration, ok bool) {
	if s.state != StateIdle {
		return 0, false
	}
	s.state = StateScheduled
	return 0, true
}

// ReadCompleted advances the state machine after a read was decoded. The
// controller keeps being polled for as long as it streams touch-class
// frames: continuation is driven by packet identity, not touch presence, so
// the single all-released frame still reaches consumers before polling
// stops. Returns the delay before the next read and whether one is wanted.
func (s *Scheduler) ReadCompleted(frame *ili2117.TouchFrame) (delay time.Duration, again bool) {
	if frame.PacketID == ili2117.PacketIDTouch {
		s.state = StateActive
		return s.interval, true
	}
	s.state = StateIdle
	return 0, false
}

// ReadFailed returns the scheduler to idle after a transport failure. The
// cycle is abandoned; the next interrupt re-arms the loop.
func (s *Scheduler) ReadFailed() {
	s.state = StateIdle
}

// Reset forces the scheduler back to idle, dropping any pending read.
func (s *Scheduler) Reset() {
	s.state = StateIdle
}
