// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package logging

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// BadgerLogger implements badger.Logger using zerolog as the backend.
//
// Badger reports routine housekeeping (table loads, compactions) at info, so
// Infof is demoted to debug and Debugf to trace.
//
// Usage:
//
//	opts := badger.DefaultOptions(dir)
//	opts.Logger = logging.NewBadgerLogger(logging.WithComponent("snapshot"))
type BadgerLogger struct {
	logger zerolog.Logger
}

// NewBadgerLogger creates a badger.Logger that writes to logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBadgerLogger(logger zerolog.Logger) *BadgerLogger {
	return &BadgerLogger{logger: logger}
}

// Errorf logs at error level.
func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.log(b.logger.Error(), format, args)
}

// Warningf logs at warn level.
func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.log(b.logger.Warn(), format, args)
}

// Infof logs at debug level.
func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.log(b.logger.Debug(), format, args)
}

// Debugf logs at trace level.
func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.log(b.logger.Trace(), format, args)
}

// log emits one event. Badger terminates its messages with a newline.
func (b *BadgerLogger) log(event *zerolog.Event, format string, args []interface{}) {
	if event == nil {
		return
	}
	event.Str("source", "badger").Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}
