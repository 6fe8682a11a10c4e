package v1

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration wraps time.Duration to support JSON/YAML marshaling of
// human-readable duration strings (e.g. "30s", "5m", "1h"). Use as a pointer
// (*Duration) in config structs so that nil means "not set" and a zero value
// means "explicitly disabled".
type Duration time.Duration

// NewDuration creates a pointer to a Duration set to the given time.Duration.
func NewDuration(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// Value returns the underlying time.Duration.
// Returns 0 when called on a nil pointer.
func (d *Duration) Value() time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(*d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("failed to parse duration: %w", err)
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value %q: must be a duration like 30s, 5m, or a nanoseconds number: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("duration must be a duration string or nanoseconds number, got %T", v)
	}
}
