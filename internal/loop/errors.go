package loop

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTiming is wrapped by every ConfigError.
var ErrInvalidTiming = errors.New("loop: timing parameter must be positive")

// ConfigError reports a rejected timing parameter.
type ConfigError struct {
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("loop: invalid %s %s: must be positive", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidTiming
}

func checkPositive(field string, d time.Duration) error {
	if d <= 0 {
		return &ConfigError{Field: field, Value: d.String()}
	}
	return nil
}
