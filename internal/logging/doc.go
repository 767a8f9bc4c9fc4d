// Package logging provides structured logging utilities for the inboxtasks
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// Create a logger with standard attributes:
//
//	logger := logging.WithComponent(slog.Default(), "pipeline")
//	logger.Info("refresh finished",
//	    logging.Status(logging.StatusSuccess))
//
// Sender addresses are anonymized before logging so runs can be correlated
// without leaking PII.
package logging
