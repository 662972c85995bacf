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

//go:build !linux

package uinput

import (
	"errors"

	ili2117 "github.com/touchkit/go-ili2117"
)

// ErrUnsupported is returned on platforms without the uinput subsystem.
var ErrUnsupported = errors.New("uinput sink is only supported on Linux")

// Sink is unavailable on this platform.
type Sink struct{}

// New always fails on non-Linux platforms.
func New(_ string) (*Sink, error) {
	return nil, ErrUnsupported
}

// Contacts implements polling.EventSink as a no-op.
func (*Sink) Contacts(_ []ili2117.SlotEvent, _ bool) {}

// Close is a no-op.
func (*Sink) Close() error { return nil }
