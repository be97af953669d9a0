package extraction

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel matched by every *ConfigurationError.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports an invalid filter setup. It is returned before
// any fiber is classified; no partial results accompany it.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Is makes errors.Is(err, ErrConfiguration) succeed for every ConfigurationError.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configError(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
