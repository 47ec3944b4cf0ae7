// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

// Package logging provides centralized zerolog-based structured logging for Citewise.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once at startup
//   - Console output for people at a terminal, JSON for log shippers
//   - Component loggers (WithComponent)
//   - Context-aware logging with request and correlation IDs
//   - A BadgerDB logger adapter
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "console",
//	})
//
//	logging.Info().Int("authors", n).Msg("citation index loaded")
//	logging.Error().Err(err).Msg("failed to write metrics textfile")
//
//	ctx = logging.ContextWithNewRequestID(ctx)
//	logging.Ctx(ctx).Debug().Msg("processing recommendation request")
//
// # Configuration
//
// Environment Variables (read by the config package):
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: console)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Structured Logging Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().Str("author", author).Msg("recommending")      // Correct
//	logging.Info().Msgf("recommending for %s", author)            // Avoid
//
// # Thread Safety
//
// The global logger is protected by a RWMutex. Loggers returned by
// WithComponent are values and safe to use from any goroutine.
package logging
