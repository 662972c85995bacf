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

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTransport(t *testing.T) {
	t.Parallel()

	t.Run("DefaultFrame", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()

		buf, err := mock.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Len(t, buf, FrameSize)
		assert.Equal(t, 1, mock.ReadCount())
	})

	t.Run("SetFrame", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		want := makeRawFrame(PacketIDTouch, 0x01)
		mock.SetFrame(want)

		buf, err := mock.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, buf)

		// Reads return a copy, mutating it must not corrupt the mock.
		buf[0] = 0xFF
		again, err := mock.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint8(PacketIDTouch), again[0])
	})

	t.Run("QueueDrainsThenRepeatsLast", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		first := makeRawFrame(PacketIDTouch, 0x01)
		second := makeRawFrame(0x00, ChecksumNone)
		mock.QueueFrames(first, second)

		buf, err := mock.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, buf)

		buf, err = mock.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, second, buf)

		// Queue exhausted, the last frame keeps being served.
		buf, err = mock.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, second, buf)
	})

	t.Run("ErrorInjection", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.SetError(NewTransportReadError("ReadFrame", "mock", ErrTransportRead))

		_, err := mock.ReadFrame(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransportRead)

		mock.ClearError()
		_, err = mock.ReadFrame(context.Background())
		assert.NoError(t, err)
	})

	t.Run("ClosedTransport", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		require.NoError(t, mock.Close())
		assert.False(t, mock.IsConnected())

		_, err := mock.ReadFrame(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransportClosed)
		assert.False(t, IsRetryable(err))
	})

	t.Run("DelayHonorsContext", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.SetDelay(time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := mock.ReadFrame(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("Reset", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		_, err := mock.ReadFrame(context.Background())
		require.NoError(t, err)
		require.NoError(t, mock.Close())

		mock.Reset()
		assert.True(t, mock.IsConnected())
		assert.Equal(t, 0, mock.ReadCount())
	})

	t.Run("Type", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		assert.Equal(t, TransportMock, mock.Type())
	})
}

func TestTransportWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("RecoversFromTransientError", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.SetFrame(makeRawFrame(PacketIDTouch, 0x01))
		mock.SetError(NewTransportReadError("ReadFrame", "mock", ErrTransportRead))

		wrapped := NewTransportWithRetry(mock, &RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    time.Millisecond,
			MaxBackoff:        5 * time.Millisecond,
			BackoffMultiplier: 2.0,
			RetryTimeout:      time.Second,
		})

		// Clear the fault after the first attempt has been consumed.
		go func() {
			time.Sleep(2 * time.Millisecond)
			mock.ClearError()
		}()

		buf, err := wrapped.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Len(t, buf, FrameSize)
		assert.GreaterOrEqual(t, mock.ReadCount(), 2)
	})

	t.Run("PermanentErrorFailsFast", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		require.NoError(t, mock.Close())

		wrapped := NewTransportWithRetry(mock, DefaultRetryConfig())

		_, err := wrapped.ReadFrame(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransportClosed)
	})

	t.Run("NilConfigUsesDefaults", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		wrapped := NewTransportWithRetry(mock, nil)

		buf, err := wrapped.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Len(t, buf, FrameSize)
	})

	t.Run("DelegatesTypeAndConnection", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		wrapped := NewTransportWithRetry(mock, DefaultRetryConfig())

		assert.Equal(t, TransportMock, wrapped.Type())
		assert.True(t, wrapped.IsConnected())
		require.NoError(t, wrapped.SetTimeout(50*time.Millisecond))
		require.NoError(t, wrapped.Close())
		assert.False(t, wrapped.IsConnected())
	})
}
