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

// Package uinput implements a polling.EventSink that forwards contact
// snapshots to a virtual Linux multitouch input device, so decoded touches
// surface through the regular input subsystem (evdev).
package uinput

import (
	ili2117 "github.com/touchkit/go-ili2117"
)

// Event codes from linux/input-event-codes.h.
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport = 0x00
	btnTouch  = 0x14A

	absX            = 0x00
	absY            = 0x01
	absMTSlot       = 0x2F
	absMTPositionX  = 0x35
	absMTPositionY  = 0x36
	absMTTrackingID = 0x39

	absCnt = 0x40
)

// event is one pending input event, before timestamps are attached.
type event struct {
	typ   uint16
	code  uint16
	value int32
}

// contactEvents flattens one acquisition cycle into the evdev sequence for
// a slotted multitouch device: per-slot MT_SLOT and TRACKING_ID (plus
// positions while touching), then pointer emulation (BTN_TOUCH and
// single-touch ABS_X/ABS_Y from the first active slot), closed by a
// SYN_REPORT.
//
// Occupancy is re-asserted or cleared for every slot on every cycle, the
// same way the controller reports it, so consumers never see stale slots.
func contactEvents(events []ili2117.SlotEvent, anyTouching bool) []event {
	out := make([]event, 0, len(events)*4+4)

	var pointer *ili2117.SlotEvent
	for i := range events {
		ev := &events[i]
		out = append(out, event{evAbs, absMTSlot, int32(ev.Slot)})
		if ev.Touching {
			out = append(out,
				event{evAbs, absMTTrackingID, int32(ev.Slot)},
				event{evAbs, absMTPositionX, int32(ev.X)},
				event{evAbs, absMTPositionY, int32(ev.Y)},
			)
			if pointer == nil {
				pointer = ev
			}
		} else {
			out = append(out, event{evAbs, absMTTrackingID, -1})
		}
	}

	var btn int32
	if anyTouching {
		btn = 1
	}
	out = append(out, event{evKey, btnTouch, btn})
	if pointer != nil {
		out = append(out,
			event{evAbs, absX, int32(pointer.X)},
			event{evAbs, absY, int32(pointer.Y)},
		)
	}

	return append(out, event{evSyn, synReport, 0})
}
