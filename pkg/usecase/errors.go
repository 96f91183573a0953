package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrExecutorNotConfigured = errors.New("executor is not configured")
)

// Context keys for error values
const (
	ContextErrorKey = "context_error"
	SourceKey       = "source"
)
