package extract

import (
	"strconv"
	"strings"
	"time"
)

// Extraction payloads carry dates as ISO day strings, occasionally as full
// timestamps or in the German day-first form.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02.01.2006",
}

// CoerceString converts an unwrapped scalar to a string, or nil when the
// value is absent or empty. Numbers are rendered without a trailing fraction
// ("5500", not "5500.000000").
func CoerceString(v any) *string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(t)
		return &s
	default:
		return nil
	}
}

// CoerceStringDefault is CoerceString with a fallback for required strings.
func CoerceStringDefault(v any, def string) string {
	if s := CoerceString(v); s != nil {
		return *s
	}
	return def
}

// CoerceFloat converts an unwrapped scalar to a float64. Required numeric
// fields degrade to 0 on missing or unparseable input, never to an error.
func CoerceFloat(v any) float64 {
	if f := CoerceFloatPtr(v); f != nil {
		return *f
	}
	return 0
}

// CoerceFloatPtr converts an unwrapped scalar to a float64 pointer, nil on
// missing or unparseable input. A parseable zero stays zero.
func CoerceFloatPtr(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// CoerceIntPtr converts an unwrapped scalar to an int pointer, nil on missing
// or unparseable input.
func CoerceIntPtr(v any) *int {
	switch t := v.(type) {
	case float64:
		i := int(t)
		return &i
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return &i
	default:
		return nil
	}
}

// CoerceDate parses an unwrapped scalar as a calendar date. The empty string
// is treated like absence, not as an invalid date.
func CoerceDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}
