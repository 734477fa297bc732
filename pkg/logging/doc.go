// Package logging provides structured logging setup for cephmedic components.
//
// It wraps the standard library slog package with shared defaults: JSON output
// to stderr, LOG_LEVEL environment configuration, module/version context on
// every record, and source location tracking at debug level.
//
// Set the default logger early in main():
//
//	logging.SetDefaultStructuredLoggerWithLevel("cephmedic", version, logLevel)
//
// then use slog as normal:
//
//	slog.Info("connected", "host", host)
//	slog.Debug("walk complete", "root", root, "files", len(files))
package logging
