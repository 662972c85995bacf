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

//go:build linux

package uinput

import (
	"fmt"
	"unsafe"

	ili2117 "github.com/touchkit/go-ili2117"
	"github.com/touchkit/go-ili2117/internal/syncutil"
	"golang.org/x/sys/unix"
)

const (
	uinputPath = "/dev/uinput"
	busI2C     = 0x18 // BUS_I2C from linux/input.h
)

// ioctl request encoding (Linux _IOC macro).
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocNone  = 0
	iocWrite = 1
)

func ioc(dir, typ, nr, size uint32) uint {
	return uint(dir<<iocDirShift | size<<iocSizeShift | typ<<iocTypeShift | nr<<iocNRShift)
}

// uinput ioctl requests from linux/uinput.h.
var (
	uiDevCreate  = ioc(iocNone, 'U', 1, 0)
	uiDevDestroy = ioc(iocNone, 'U', 2, 0)
	uiSetEvBit   = ioc(iocWrite, 'U', 100, 4) // _IOW('U', 100, int)
	uiSetKeyBit  = ioc(iocWrite, 'U', 101, 4)
	uiSetAbsBit  = ioc(iocWrite, 'U', 103, 4)
)

// userDev mirrors struct uinput_user_dev from linux/uinput.h.
type userDev struct {
	Name [80]byte
	ID   struct {
		Bustype uint16
		Vendor  uint16
		Product uint16
		Version uint16
	}
	FFEffectsMax uint32
	AbsMax       [absCnt]int32
	AbsMin       [absCnt]int32
	AbsFuzz      [absCnt]int32
	AbsFlat      [absCnt]int32
}

// inputEvent mirrors struct input_event; unix.Timeval carries the
// platform's timeval size so the layout matches the kernel's on every arch.
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Sink forwards contact snapshots to a virtual multitouch input device.
// Contacts is called from the acquisition worker; Close may race with it
// from another goroutine, so the file descriptor is mutex-guarded.
type Sink struct {
	mu     syncutil.Mutex
	fd     int
	closed bool
}

// New creates the virtual input device. The caller needs write access to
// /dev/uinput (root or the uinput group on most distributions).
func New(name string) (*Sink, error) {
	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", uinputPath, err)
	}

	s := &Sink{fd: fd}
	if err := s.setup(name); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return s, nil
}

func (s *Sink) setup(name string) error {
	for _, ev := range []int{evSyn, evKey, evAbs} {
		if err := unix.IoctlSetInt(s.fd, uiSetEvBit, ev); err != nil {
			return fmt.Errorf("UI_SET_EVBIT %#x failed: %w", ev, err)
		}
	}
	if err := unix.IoctlSetInt(s.fd, uiSetKeyBit, btnTouch); err != nil {
		return fmt.Errorf("UI_SET_KEYBIT BTN_TOUCH failed: %w", err)
	}
	for _, abs := range []int{absX, absY, absMTSlot, absMTPositionX, absMTPositionY, absMTTrackingID} {
		if err := unix.IoctlSetInt(s.fd, uiSetAbsBit, abs); err != nil {
			return fmt.Errorf("UI_SET_ABSBIT %#x failed: %w", abs, err)
		}
	}

	var dev userDev
	copy(dev.Name[:len(dev.Name)-1], name)
	dev.ID.Bustype = busI2C
	dev.AbsMax[absX] = ili2117.CoordMax
	dev.AbsMax[absY] = ili2117.CoordMax
	dev.AbsMax[absMTPositionX] = ili2117.CoordMax
	dev.AbsMax[absMTPositionY] = ili2117.CoordMax
	dev.AbsMax[absMTSlot] = ili2117.MaxContacts - 1
	dev.AbsMax[absMTTrackingID] = ili2117.MaxContacts - 1

	buf := (*[unsafe.Sizeof(dev)]byte)(unsafe.Pointer(&dev))[:]
	if _, err := unix.Write(s.fd, buf); err != nil {
		return fmt.Errorf("failed to write uinput device setup: %w", err)
	}
	if err := unix.IoctlSetInt(s.fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("UI_DEV_CREATE failed: %w", err)
	}
	return nil
}

// Contacts implements polling.EventSink. The full slot snapshot and the
// pointer-emulation state are written as one event batch closed by a
// SYN_REPORT; the kernel attaches timestamps.
func (s *Sink) Contacts(events []ili2117.SlotEvent, anyTouching bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	pending := contactEvents(events, anyTouching)
	const eventSize = int(unsafe.Sizeof(inputEvent{}))
	buf := make([]byte, 0, len(pending)*eventSize)
	for _, e := range pending {
		ie := inputEvent{Type: e.typ, Code: e.code, Value: e.value}
		buf = append(buf, (*[unsafe.Sizeof(ie)]byte)(unsafe.Pointer(&ie))[:]...)
	}

	if _, err := unix.Write(s.fd, buf); err != nil {
		ili2117.Debugf("uinput write failed: %v", err)
	}
}

// Close destroys the virtual device and releases the file descriptor.
// Idempotent.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := unix.IoctlSetInt(s.fd, uiDevDestroy, 0); err != nil {
		_ = unix.Close(s.fd)
		return fmt.Errorf("UI_DEV_DESTROY failed: %w", err)
	}
	if err := unix.Close(s.fd); err != nil {
		return fmt.Errorf("failed to close %s: %w", uinputPath, err)
	}
	return nil
}
