package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while importing reference
// data or recording metrics.
var (
	// ErrMalformedRecord indicates that an input record could not be parsed.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMissingHeader indicates that a tabular source lacks its header row.
	ErrMissingHeader = errors.New("missing header")

	// ErrDuplicateCandidate indicates that a candidate appears twice in a
	// source header.
	ErrDuplicateCandidate = errors.New("duplicate candidate")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// ImportError represents an error from reading reference data such as
// ballots, option files, or expected outcomes.
type ImportError struct {
	// Source names the file or stream being read.
	Source string

	// Line is the 1-based line or record number, or 0 when not applicable.
	Line int

	// Operation is the name of the import operation that failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ImportError.
func (e *ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("import error: operation=%s, source=%s, line=%d, err=%v", e.Operation, e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("import error: operation=%s, source=%s, err=%v", e.Operation, e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *ImportError) Unwrap() error { return e.Err }

// NewImportError creates a new ImportError with the given details.
func NewImportError(source, operation string, line int, err error) *ImportError {
	return &ImportError{
		Source:    source,
		Line:      line,
		Operation: operation,
		Err:       err,
	}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
