package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the wire format for all timestamps: ISO-8601 with
// microsecond precision, always UTC, no zone suffix.
const TimeLayout = "2006-01-02T15:04:05.000000"

// Time wraps time.Time with the service's wire format. All values are
// normalized to UTC on construction and truncated to microseconds.
type Time struct {
	time.Time
}

// Now returns the current instant as a Time.
func Now() Time { return At(time.Now()) }

// At converts a time.Time to a Time in UTC at microsecond precision.
func At(t time.Time) Time { return Time{t.UTC().Truncate(time.Microsecond)} }

// ParseTime parses a wire-format timestamp.
func ParseTime(s string) (Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return Time{}, fmt.Errorf("%w: bad timestamp %q", ErrValidation, s)
	}
	return Time{t}, nil
}

func (t Time) String() string { return t.UTC().Format(TimeLayout) }

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer so Time columns round-trip through
// database/sql as time.Time.
func (t Time) Value() (driver.Value, error) { return t.UTC(), nil }

// Scan implements sql.Scanner.
func (t *Time) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*t = At(v)
		return nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			parsed, err = time.ParseInLocation(TimeLayout, v, time.UTC)
		}
		if err != nil {
			return fmt.Errorf("scan time from %q: %w", v, err)
		}
		*t = At(parsed)
		return nil
	case []byte:
		return t.Scan(string(v))
	case nil:
		*t = Time{}
		return nil
	default:
		return fmt.Errorf("scan time from %T", src)
	}
}
