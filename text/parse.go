package text

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ParseInt returns def for empty or malformed input.
func ParseInt(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

func ParseFloat(value string, def float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return f
}

// ParseBytes understands sizes like "272.3 KiB" or "12MB".
func ParseBytes(value string, def int64) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return def
	}
	return int64(n)
}

// ParseTimestamp converts unix seconds to UTC time.
func ParseTimestamp(value string) (time.Time, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return time.Time{}, false
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC(), true
}

// ParseDatetime parses value with layout, falling back to RFC 3339.
func ParseDatetime(value, layout string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if layout == "" {
		layout = time.RFC3339
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
