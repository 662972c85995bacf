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

// touchwatch streams contact events from an ILI2117 touch controller.
// It wires the I2C transport, the GPIO interrupt line and an event sink
// (stdout by default, a virtual uinput device with -uinput) to the
// acquisition loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ili2117 "github.com/touchkit/go-ili2117"
	"github.com/touchkit/go-ili2117/irq"
	"github.com/touchkit/go-ili2117/polling"
	"github.com/touchkit/go-ili2117/sink/uinput"
	"github.com/touchkit/go-ili2117/transport/i2c"
)

type config struct {
	busPath   string
	irqPin    string
	addr      uint
	pollEvery time.Duration
	useUinput bool
	withRetry bool
	debug     bool
}

var (
	flagBusPath   string
	flagIRQPin    string
	flagAddr      uint
	flagPollEvery time.Duration
	flagUinput    bool
	flagRetry     bool
	flagDebug     bool
)

func init() {
	flag.StringVar(&flagBusPath, "bus", "/dev/i2c-1", "I2C bus the controller is attached to")
	flag.UintVar(&flagAddr, "addr", i2c.DefaultAddr, "7-bit I2C address of the controller")
	flag.StringVar(&flagIRQPin, "irq", "GPIO27", "GPIO pin wired to the controller's INT line")
	flag.DurationVar(&flagPollEvery, "interval", 20*time.Millisecond, "Poll interval while frames keep arriving")
	flag.BoolVar(&flagUinput, "uinput", false, "Feed events to a virtual input device instead of stdout")
	flag.BoolVar(&flagRetry, "retry", false, "Retry transient bus errors within a read")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
}

func parseConfig() *config {
	cfg := &config{
		busPath:   flagBusPath,
		irqPin:    flagIRQPin,
		addr:      flagAddr,
		pollEvery: flagPollEvery,
		useUinput: flagUinput,
		withRetry: flagRetry,
		debug:     flagDebug,
	}

	if cfg.debug {
		ili2117.SetDebugEnabled(true)
	}

	return cfg
}

// printerSink writes contact transitions to stdout.
func printerSink() polling.SinkFunc {
	wasTouching := false
	return func(events []ili2117.SlotEvent, anyTouching bool) {
		var parts []string
		for _, ev := range events {
			if ev.Touching {
				parts = append(parts, fmt.Sprintf("slot%d=(%d,%d)", ev.Slot, ev.X, ev.Y))
			}
		}
		switch {
		case anyTouching:
			fmt.Println(strings.Join(parts, " "))
		case wasTouching:
			fmt.Println("all released")
		}
		wasTouching = anyTouching
	}
}

func newSink(cfg *config) (polling.EventSink, func(), error) {
	if !cfg.useUinput {
		return printerSink(), func() {}, nil
	}
	s, err := uinput.New("ILI2117 Touchscreen")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create uinput sink: %w", err)
	}
	return s, func() { _ = s.Close() }, nil
}

func newDevice(cfg *config) (*ili2117.Device, error) {
	transport, err := i2c.NewWithAddress(cfg.busPath, uint16(cfg.addr))
	if err != nil {
		return nil, fmt.Errorf("failed to create I2C transport for %s: %w", cfg.busPath, err)
	}

	var opts []ili2117.Option
	if cfg.withRetry {
		opts = append(opts, ili2117.WithRetryConfig(ili2117.DefaultRetryConfig()))
	}

	device, err := ili2117.New(transport, opts...)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	return device, nil
}

func run(ctx context.Context, cfg *config) error {
	device, err := newDevice(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = device.Close() }()

	sink, closeSink, err := newSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	pollCfg := polling.DefaultConfig()
	pollCfg.PollInterval = cfg.pollEvery

	acq := polling.NewAcquirer(device, pollCfg, sink)
	if err := acq.Start(ctx); err != nil {
		return fmt.Errorf("failed to start acquisition: %w", err)
	}
	defer func() { _ = acq.Stop(context.Background()) }()

	line, err := irq.Open(cfg.irqPin)
	if err != nil {
		return fmt.Errorf("failed to open interrupt line %s: %w", cfg.irqPin, err)
	}
	defer func() { _ = line.Close() }()
	line.Watch(acq.Interrupt)

	fmt.Printf("watching %s (addr %#02x, irq %s), ctrl-c to exit\n", cfg.busPath, cfg.addr, cfg.irqPin)
	<-ctx.Done()

	metrics := acq.GetMetrics()
	fmt.Printf("cycles=%d errors=%d valid=%d last-read=%v\n",
		metrics.ReadCycles, metrics.ReadErrors, metrics.FramesValid, metrics.LastReadLatency)
	return nil
}

func main() {
	flag.Parse()
	cfg := parseConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "touchwatch: %v\n", err)
		os.Exit(1)
	}
}
