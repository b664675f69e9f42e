package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDurationField parses a Go duration string (e.g. "5s") found at the
// config key field. Empty means 0; negative values are rejected.
func ParseDurationField(field, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: %q is not a duration (want e.g. \"5s\", \"1m\")", field, raw)
	case d < 0:
		return 0, fmt.Errorf("%s: %q must not be negative", field, raw)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with def for empty or zero.
func ParseDurationOrDefault(field, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(field, raw)
	if err != nil || d > 0 {
		return d, err
	}
	return def, nil
}
