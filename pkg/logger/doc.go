// Package logger builds configured slog.Logger instances with consistent
// defaults across services: JSON output at info level on stdout, optional
// text format for development, and a static service attribute on every
// record. Config can be populated from the environment via pkg/config.
package logger
