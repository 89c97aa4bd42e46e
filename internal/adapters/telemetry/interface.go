// Package telemetry provides telemetry adapter interfaces.
package telemetry

import (
	"context"
	"net/http"
	"time"
)

// Telemetry defines the telemetry adapter interface.
type Telemetry interface {
	// RecordQuery records a statement execution.
	RecordQuery(ctx context.Context, info QueryInfo)

	// RecordError records an error.
	RecordError(ctx context.Context, info ErrorInfo)

	// RecordRender records a completed table render.
	RecordRender(ctx context.Context, info RenderInfo)

	// Handler exposes collected metrics over HTTP, nil when unsupported.
	Handler() http.Handler

	// Close releases resources held by the adapter.
	Close(ctx context.Context) error
}

// QueryInfo contains information about a statement.
type QueryInfo struct {
	// Operation is "fetch" or "count".
	Operation string

	// Duration is how long the statement took.
	Duration time.Duration

	// Success indicates if the statement succeeded.
	Success bool

	// Rows is the number of rows returned, or the count for count statements.
	Rows int64
}

// ErrorInfo contains information about an error.
type ErrorInfo struct {
	// Error is the error that occurred.
	Error error

	// Operation is the operation that failed.
	Operation string

	// Query is the SQL text, when applicable.
	Query string
}

// RenderInfo contains information about a table render.
type RenderInfo struct {
	// Table is the configured table name.
	Table string

	// Debug is true for renders that only produced SQL text.
	Debug bool

	// Duration is the wall time of the render.
	Duration time.Duration

	// Success indicates if the render succeeded.
	Success bool
}

// Config holds telemetry configuration.
type Config struct {
	// Type is noop or prometheus.
	Type string

	// Namespace prefixes every metric name.
	Namespace string
}
