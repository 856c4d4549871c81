// Package logger provides structured logging for applications run by apprun.
//
// It wraps the standard library log/slog and adds appender-based
// configuration:
//
//   - logger.go: Logger interface, levels, default logger
//   - appender.go: console and file appenders, option tree decoding
//   - handler.go: fan-out and pattern-layout slog handlers
//   - context.go: logger, request ID and command propagation via context
//   - redact.go: sensitive data redaction
//
// The default configuration is a single console appender on stderr at WARN.
package logger
