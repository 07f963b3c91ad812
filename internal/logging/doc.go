// Package logging provides structured logging utilities for the coreplane CLI.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// All log output goes to stderr so that stdout stays reserved for command
// output and remains safe to pipe.
//
// Sensitive values never reach the log: session tokens are masked with a
// length indicator, and passwords are never logged at all.
package logging
