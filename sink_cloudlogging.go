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
//  This file is adapted from Google LLC's galog Cloud Logging backend.

package logrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/logging"
	"google.golang.org/api/option"
)

// CloudLoggingInitMode controls when CloudLoggingBackend establishes its
// client connection.
type CloudLoggingInitMode int

const (
	// CloudLoggingInitModeLazy defers client creation until InitClient is
	// called explicitly. Writes before that return errCloudLoggingNotReady,
	// which the fan-out layer folds into diagnostics rather than blocking
	// delivery to other sinks.
	CloudLoggingInitModeLazy CloudLoggingInitMode = iota
	// CloudLoggingInitModeActive creates the client immediately in
	// NewCloudLoggingBackend.
	CloudLoggingInitModeActive
)

// CloudLoggingFlushInterval is the default DelayThreshold passed to the
// underlying logging.Logger.
const CloudLoggingFlushInterval = 3 * time.Second

var errCloudLoggingNotReady = errors.New("logrich: cloud logging client not initialized")

// CloudLoggingOptions configures a CloudLoggingBackend.
type CloudLoggingOptions struct {
	Ident                 string
	Project               string
	Instance              string
	UserAgent             string
	FlushInterval         time.Duration
	WithoutAuthentication bool
}

// CloudLoggingBackend forwards events to Google Cloud Logging. Instance
// metadata is often unavailable at process start, so lazy initialization
// lets the backend be registered immediately. Until InitClient succeeds,
// Write returns errCloudLoggingNotReady; such events are not sent to Cloud
// Logging later and remain only in the ring buffer and other sinks.
type CloudLoggingBackend struct {
	thresholdGate
	mu     sync.Mutex
	client *logging.Client
	logger *logging.Logger
	opts   CloudLoggingOptions
}

// NewCloudLoggingBackend returns a CloudLoggingBackend. In active mode it
// calls InitClient immediately and returns any resulting error.
func NewCloudLoggingBackend(ctx context.Context, mode CloudLoggingInitMode, opts CloudLoggingOptions) (*CloudLoggingBackend, error) {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = CloudLoggingFlushInterval
	}
	cb := &CloudLoggingBackend{thresholdGate: newThresholdGate(DebugLevel), opts: opts}
	if mode == CloudLoggingInitModeActive {
		if err := cb.InitClient(ctx); err != nil {
			return nil, fmt.Errorf("logrich: initialize cloud logging client: %w", err)
		}
	}
	return cb, nil
}

// InitClient establishes the Cloud Logging client and logger. Calling it
// more than once is a no-op.
func (cb *CloudLoggingBackend) InitClient(ctx context.Context) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.client != nil {
		return nil
	}

	var clientOpts []option.ClientOption
	if cb.opts.UserAgent != "" {
		clientOpts = append(clientOpts, option.WithUserAgent(cb.opts.UserAgent))
	}
	if cb.opts.WithoutAuthentication {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}

	client, err := logging.NewClient(ctx, cb.opts.Project, clientOpts...)
	if err != nil {
		return fmt.Errorf("logrich: create cloud logging client: %w", err)
	}
	client.OnError = func(error) {}

	var loggerOpts []logging.LoggerOption
	if cb.opts.Instance != "" {
		loggerOpts = append(loggerOpts, logging.CommonLabels(map[string]string{"instance_name": cb.opts.Instance}))
	}
	loggerOpts = append(loggerOpts, logging.DelayThreshold(cb.opts.FlushInterval))

	cb.client = client
	cb.logger = client.Logger(cb.opts.Ident, loggerOpts...)
	return nil
}

// Name implements SinkPort.
func (cb *CloudLoggingBackend) Name() string { return "cloudlogging" }

var cloudSeverity = map[LogLevel]logging.Severity{
	CriticalLevel: logging.Critical,
	ErrorLevel:    logging.Error,
	WarningLevel:  logging.Warning,
	InfoLevel:     logging.Info,
	DebugLevel:    logging.Debug,
}

type cloudEntryPayload struct {
	Message        string            `json:"message"`
	LocalTimestamp string            `json:"localTimestamp"`
	LoggerName     string            `json:"loggerName"`
	EventID        string            `json:"eventId"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Write implements SinkPort.
func (cb *CloudLoggingBackend) Write(_ context.Context, ev LogEvent) error {
	cb.mu.Lock()
	logger := cb.logger
	cb.mu.Unlock()
	if logger == nil {
		return errCloudLoggingNotReady
	}

	logger.Log(logging.Entry{
		Severity: cloudSeverity[ev.Level],
		Payload: &cloudEntryPayload{
			Message:        ev.Message,
			LocalTimestamp: ev.Timestamp.UTC().Format(time.RFC3339Nano),
			LoggerName:     ev.LoggerName,
			EventID:        ev.EventID,
			Extra:          ev.Extra,
		},
	})
	return nil
}

// Close flushes and closes the underlying client, if initialized.
func (cb *CloudLoggingBackend) Close() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.client == nil {
		return nil
	}
	if err := cb.logger.Flush(); err != nil {
		return fmt.Errorf("logrich: flush cloud logging: %w", err)
	}
	return cb.client.Close()
}
