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
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ili2117 "github.com/touchkit/go-ili2117"
)

// rawTouch encodes a touch-class report with the given contacts.
func rawTouch(contacts map[int][2]uint16) []byte {
	frame := touchFrame()
	for slot, xy := range contacts {
		frame.Fingers[slot] = ili2117.FingerRecord{
			XHi: uint8(xy[0] >> 8), XLo: uint8(xy[0]),
			YHi: uint8(xy[1] >> 8), YLo: uint8(xy[1]),
			Checksum: 0x01,
		}
	}
	return ili2117.EncodeFrame(frame)
}

// rawIdle encodes the quiet report the controller sends when it has nothing
// further to say.
func rawIdle() []byte {
	return ili2117.EncodeFrame(idleFrame())
}

type sinkCall struct {
	events      []ili2117.SlotEvent
	anyTouching bool
}

// captureSink records every sink invocation for later inspection.
type captureSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

func (s *captureSink) Contacts(events []ili2117.SlotEvent, anyTouching bool) {
	cp := make([]ili2117.SlotEvent, len(events))
	copy(cp, events)
	s.mu.Lock()
	s.calls = append(s.calls, sinkCall{events: cp, anyTouching: anyTouching})
	s.mu.Unlock()
}

func (s *captureSink) snapshot() []sinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sinkCall, len(s.calls))
	copy(out, s.calls)
	return out
}

func fastConfig() *Config {
	return &Config{
		PollInterval: 2 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
	}
}

func newTestAcquirer(t *testing.T, mock *ili2117.MockTransport, sink EventSink) *Acquirer {
	t.Helper()
	device, err := ili2117.New(mock)
	require.NoError(t, err)
	return NewAcquirer(device, fastConfig(), sink)
}

func startAcquirer(t *testing.T, acq *Acquirer) {
	t.Helper()
	require.NoError(t, acq.Start(context.Background()))
	t.Cleanup(func() { _ = acq.Stop(context.Background()) })
}

func waitForCycles(t *testing.T, acq *Acquirer, want int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return acq.GetMetrics().ReadCycles >= want
	}, 2*time.Second, time.Millisecond, "expected at least %d read cycles", want)
}

func TestAcquirerInterruptDrivenSession(t *testing.T) {
	t.Parallel()

	mock := ili2117.NewMockTransport()
	mock.QueueFrames(
		rawTouch(map[int][2]uint16{0: {100, 200}}),
		rawTouch(map[int][2]uint16{0: {105, 210}}),
		rawIdle(),
	)

	sink := &captureSink{}
	acq := newTestAcquirer(t, mock, sink)
	startAcquirer(t, acq)

	acq.Interrupt()
	waitForCycles(t, acq, 3)

	// The idle frame parks the loop; no further reads without an interrupt.
	time.Sleep(20 * time.Millisecond)
	metrics := acq.GetMetrics()
	assert.Equal(t, int64(3), metrics.ReadCycles)
	assert.Equal(t, int64(0), metrics.ReadErrors)
	assert.Equal(t, int64(2), metrics.FramesValid)

	calls := sink.snapshot()
	require.Len(t, calls, 3)

	assert.True(t, calls[0].anyTouching)
	assert.Equal(t, ili2117.SlotEvent{Slot: 0, Touching: true, X: 100, Y: 200}, calls[0].events[0])

	assert.True(t, calls[1].anyTouching)
	assert.Equal(t, ili2117.SlotEvent{Slot: 0, Touching: true, X: 105, Y: 210}, calls[1].events[0])

	// The quiet frame still reaches the sink so consumers see the release.
	assert.False(t, calls[2].anyTouching)
	assert.False(t, calls[2].events[0].Touching)
}

func TestAcquirerCoalescesInterrupts(t *testing.T) {
	t.Parallel()

	mock := ili2117.NewMockTransport()
	mock.SetFrame(rawIdle())

	acq := newTestAcquirer(t, mock, nil)

	// Interrupts raised before the worker runs collapse into one wake.
	acq.Interrupt()
	acq.Interrupt()
	acq.Interrupt()

	startAcquirer(t, acq)
	waitForCycles(t, acq, 1)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), acq.GetMetrics().ReadCycles)
	assert.Equal(t, 1, mock.ReadCount())
}

func TestAcquirerAbandonsCycleOnReadError(t *testing.T) {
	t.Parallel()

	mock := ili2117.NewMockTransport()
	mock.SetError(ili2117.NewTransportReadError("ReadFrame", "mock", ili2117.ErrTransportRead))

	sink := &captureSink{}
	acq := newTestAcquirer(t, mock, sink)
	startAcquirer(t, acq)

	acq.Interrupt()
	waitForCycles(t, acq, 1)

	// The failed cycle is abandoned outright: no events, no retry.
	time.Sleep(20 * time.Millisecond)
	metrics := acq.GetMetrics()
	assert.Equal(t, int64(1), metrics.ReadCycles)
	assert.Equal(t, int64(1), metrics.ReadErrors)
	assert.Empty(t, sink.snapshot())

	// A later interrupt starts a fresh cycle once the bus recovers.
	mock.ClearError()
	mock.SetFrame(rawIdle())
	acq.Interrupt()
	waitForCycles(t, acq, 2)
	assert.Len(t, sink.snapshot(), 1)
}

func TestAcquirerShortReadCountsAsError(t *testing.T) {
	t.Parallel()

	mock := ili2117.NewMockTransport()
	mock.SetFrame(make([]byte, ili2117.FrameSize-1))

	sink := &captureSink{}
	acq := newTestAcquirer(t, mock, sink)
	startAcquirer(t, acq)

	acq.Interrupt()
	waitForCycles(t, acq, 1)

	time.Sleep(20 * time.Millisecond)
	metrics := acq.GetMetrics()
	assert.Equal(t, int64(1), metrics.ReadErrors)
	assert.Empty(t, sink.snapshot())
}

func TestAcquirerSuspendResume(t *testing.T) {
	t.Parallel()

	mock := ili2117.NewMockTransport()
	mock.SetFrame(rawIdle())

	acq := newTestAcquirer(t, mock, nil)
	startAcquirer(t, acq)

	acq.Suspend()
	acq.Interrupt()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(0), acq.GetMetrics().ReadCycles, "suspended acquirer must not read")

	acq.Resume()
	acq.Interrupt()
	waitForCycles(t, acq, 1)
}

func TestAcquirerStopJoinsWorker(t *testing.T) {
	t.Parallel()

	mock := ili2117.NewMockTransport()
	mock.SetFrame(rawTouch(map[int][2]uint16{1: {5, 6}}))

	acq := newTestAcquirer(t, mock, nil)
	require.NoError(t, acq.Start(context.Background()))

	acq.Interrupt()
	waitForCycles(t, acq, 1)

	require.NoError(t, acq.Stop(context.Background()))
	cycles := acq.GetMetrics().ReadCycles

	// The worker is gone; interrupts no longer cause reads.
	acq.Interrupt()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, cycles, acq.GetMetrics().ReadCycles)
}

func TestAcquirerStartStopIdempotent(t *testing.T) {
	t.Parallel()

	mock := ili2117.NewMockTransport()
	mock.SetFrame(rawIdle())

	acq := newTestAcquirer(t, mock, nil)

	require.NoError(t, acq.Start(context.Background()))
	require.NoError(t, acq.Start(context.Background()))

	acq.Interrupt()
	waitForCycles(t, acq, 1)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), acq.GetMetrics().ReadCycles, "double Start must not spawn a second worker")

	require.NoError(t, acq.Stop(context.Background()))
	require.NoError(t, acq.Stop(context.Background()))
}

func TestAcquirerNilConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	device, err := ili2117.New(ili2117.NewMockTransport())
	require.NoError(t, err)

	acq := NewAcquirer(device, nil, nil)
	require.NotNil(t, acq)
	require.NoError(t, acq.Start(context.Background()))
	require.NoError(t, acq.Stop(context.Background()))
}

func TestSinkFunc(t *testing.T) {
	t.Parallel()

	var got []ili2117.SlotEvent
	var gotTouching bool
	sink := SinkFunc(func(events []ili2117.SlotEvent, anyTouching bool) {
		got = events
		gotTouching = anyTouching
	})

	events := []ili2117.SlotEvent{{Slot: 2, Touching: true, X: 1, Y: 2}}
	sink.Contacts(events, true)

	assert.Equal(t, events, got)
	assert.True(t, gotTouching)
}
