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

import "time"

// Config holds acquisition loop configuration options
type Config struct {
	// PollInterval is the delay between follow-up reads while the
	// controller keeps streaming touch-class frames. The ILI2117 expects
	// 20ms.
	PollInterval time.Duration
	// ReadTimeout bounds a single transport read
	ReadTimeout time.Duration
}

// DefaultConfig returns the default acquisition configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 20 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
	}
}
