package services

import "errors"

// Sentinel errors the transport layer maps to HTTP statuses.
var (
	// ErrDatasetUnavailable means the underlying extracts could not be
	// loaded; views fail closed rather than render from partial data.
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	// ErrReportNotFound means the companion markdown report is missing.
	// The report feature degrades, the rest of the dashboard is unaffected.
	ErrReportNotFound = errors.New("analysis report not found")
)
