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

// SlotEvent reports the state of one contact slot after a frame update.
// X and Y are only meaningful when Touching is true.
type SlotEvent struct {
	Slot     int
	X        uint16
	Y        uint16
	Touching bool
}

// ContactSlot is the tracked state of one hardware contact slot.
type ContactSlot struct {
	X      uint16
	Y      uint16
	Active bool
}

// Tracker maps decoded frames onto the controller's 10 fixed contact slots.
//
// Slots are indexed by hardware position, not by spatial or temporal
// identity: slot N in one frame has no guaranteed correspondence to slot N
// in the next beyond what the controller assigns.
//
// Thread safety: Tracker is NOT thread-safe. The acquisition loop owns it
// and serializes all updates onto a single worker, so no locking is needed;
// any other use requires external synchronization.
type Tracker struct {
	slots [MaxContacts]ContactSlot
}

// NewTracker returns a tracker with all slots released.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update applies one decoded frame and returns exactly MaxContacts events in
// slot order, one per slot, on every call.
//
// A slot is touching iff the frame is valid as a whole AND the slot's own
// checksum is not the ChecksumNone sentinel. An invalid frame (wrong packet
// id or whole-frame sentinel) therefore releases every slot regardless of
// per-finger data; the whole-frame sentinel always wins over per-finger
// checksums. Releases are emitted even for slots that were never touching, so
// consumers can treat the result as a full snapshot, mirroring hardware
// slot multiplexing where occupancy is re-asserted or cleared every cycle.
func (tr *Tracker) Update(frame *TouchFrame) []SlotEvent {
	frameValid := frame.Valid()
	events := make([]SlotEvent, MaxContacts)

	for i := range tr.slots {
		finger := &frame.Fingers[i]
		touching := frameValid && finger.Active()

		if touching {
			tr.slots[i] = ContactSlot{X: finger.X(), Y: finger.Y(), Active: true}
			events[i] = SlotEvent{Slot: i, Touching: true, X: finger.X(), Y: finger.Y()}
		} else {
			tr.slots[i] = ContactSlot{}
			events[i] = SlotEvent{Slot: i}
		}
	}

	return events
}

// AnyTouching reports whether any slot is currently active. It reflects the
// most recent Update and backs pointer-emulation style consumers.
func (tr *Tracker) AnyTouching() bool {
	for i := range tr.slots {
		if tr.slots[i].Active {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current slot states.
func (tr *Tracker) Snapshot() [MaxContacts]ContactSlot {
	return tr.slots
}
