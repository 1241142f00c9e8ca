package battery

import (
	"errors"
	"fmt"
)

// ConfigError reports malformed constants or series. It is raised at startup,
// never while stepping.
type ConfigError struct {
	Field  string
	Reason string
}

var _ error = new(ConfigError)

func (c *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", c.Field, c.Reason)
}

var ErrHorizonExceeded = errors.New("step past horizon")
