//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//
//  This file is adapted from Google LLC's galog serial port backend.

package logrich

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// DefaultSerialBaud is the default baud rate for SerialBackend.
const DefaultSerialBaud = 115200

// SerialOptions configures a SerialBackend.
type SerialOptions struct {
	Port string
	Baud int
}

// SerialBackend writes events to a serial port, useful for headless or
// embedded targets with no filesystem or network sink available. The port
// is opened lazily on first write and kept open across writes.
type SerialBackend struct {
	thresholdGate
	mu   sync.Mutex
	opts SerialOptions
	port serial.Port
}

// NewSerialBackend returns a SerialBackend targeting opts.Port at
// opts.Baud. A zero Baud defaults to DefaultSerialBaud.
func NewSerialBackend(opts SerialOptions) *SerialBackend {
	if opts.Baud <= 0 {
		opts.Baud = DefaultSerialBaud
	}
	return &SerialBackend{thresholdGate: newThresholdGate(DebugLevel), opts: opts}
}

// Name implements SinkPort.
func (sb *SerialBackend) Name() string { return "serial" }

// Write implements SinkPort.
func (sb *SerialBackend) Write(_ context.Context, ev LogEvent) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.port == nil {
		port, err := serial.Open(sb.opts.Port, &serial.Mode{BaudRate: sb.opts.Baud})
		if err != nil {
			return fmt.Errorf("logrich: open serial port: %w", err)
		}
		sb.port = port
	}

	message := fmt.Sprintf("%s %s [%s] %s\n",
		ev.Timestamp.UTC().Format(time.RFC3339),
		ev.Level.Code(),
		ev.LoggerName,
		ev.Message,
	)
	n, err := sb.port.Write([]byte(message))
	if err != nil {
		sb.port.Close()
		sb.port = nil
		return fmt.Errorf("logrich: write serial: %w", err)
	}
	if n != len(message) {
		return fmt.Errorf("logrich: short serial write: %d of %d bytes", n, len(message))
	}
	return nil
}

// Close closes the underlying serial port, if open.
func (sb *SerialBackend) Close() error {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.port == nil {
		return nil
	}
	err := sb.port.Close()
	sb.port = nil
	return err
}
