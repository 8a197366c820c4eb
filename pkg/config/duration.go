package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration validates that a duration is greater than
// zero. Used for timeout and interval validation.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateIntRange validates that v lies within [min, max] inclusive.
func ValidateIntRange(v, min, max int) error {
	if v < min || v > max {
		return fmt.Errorf("value %d outside allowed range [%d, %d]", v, min, max)
	}
	return nil
}
