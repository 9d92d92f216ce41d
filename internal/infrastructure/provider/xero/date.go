package xero

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var msDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// Date decodes Xero timestamps. Xero sends "/Date(1700000000000+0000)/" in
// most fields and ISO-8601 without a zone in a few others.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// Ptr returns nil for a zero Date.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// ParseDate parses either Xero date form into UTC.
func ParseDate(raw string) (time.Time, error) {
	if m := msDatePattern.FindStringSubmatch(raw); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid Xero date %q: %w", raw, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid Xero date %q", raw)
}
