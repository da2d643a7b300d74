package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FlexString accepts a JSON string or number. Offline clients are not
// consistent about quoting ids and enrolment numbers.
type FlexString string

func (fs *FlexString) UnmarshalJSON(data []byte) error {
	if fs == nil {
		return fmt.Errorf("FlexString: nil receiver")
	}
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*fs = FlexString(strings.TrimSpace(s))
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err == nil {
		*fs = FlexString(num.String())
		return nil
	}

	return fmt.Errorf("expected string or number, got %s", string(data))
}

func (fs FlexString) String() string { return string(fs) }

// Millis is a Unix timestamp in milliseconds. On input it accepts a number,
// a numeric string, or an RFC3339 / date string. It is always written back
// as a number.
type Millis int64

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	if m == nil {
		return fmt.Errorf("Millis: nil receiver")
	}
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err == nil {
		v, err := parseMillisNumber(num.String())
		if err != nil {
			return err
		}
		*m = v
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("expected timestamp, got %s", string(data))
	}
	v, err := ParseMillis(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMillis parses a numeric epoch-ms string or one of the accepted date
// layouts. Layouts without a zone are read as UTC.
func ParseMillis(s string) (Millis, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	if v, err := parseMillisNumber(s); err == nil {
		return v, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return MillisFrom(t), nil
		}
	}
	return 0, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseMillisNumber(s string) (Millis, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Millis(v), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("timestamp %q out of range", s)
	}
	return Millis(int64(f)), nil
}

func MillisFrom(t time.Time) Millis { return Millis(t.UTC().UnixMilli()) }

// MillisPtr is MillisFrom for the optional-presence fields.
func MillisPtr(t time.Time) *Millis {
	m := MillisFrom(t)
	return &m
}

func (m Millis) Time() time.Time { return time.UnixMilli(int64(m)).UTC() }

func (m Millis) IsZero() bool { return m == 0 }
