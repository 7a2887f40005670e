package model

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an input or parameter problem that makes a run
// meaningless (bad segmenter length relation, missing catalog or allow-list,
// unrecognized chunk-filter shape). It aborts the operation; per-mention
// failures are data in the AuditTrail instead.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// ConfigErrorf builds a ConfigurationError with fmt-style formatting.
func ConfigErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
