// Package logging provides slog construction with console and JSON handlers,
// standardized context fields, and secret redaction applied before any sink.
package logging
