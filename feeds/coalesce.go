package feeds

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// The upstreams disagree on field names between deployments and even
// between records. Each logical attribute is therefore resolved from an
// ordered candidate list instead of a single struct tag.

// pickString returns the first candidate key holding a non-empty string.
// Bare numbers (vehicle ids, line numbers) are formatted as strings.
func pickString(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}

// pickFloat returns the first candidate key holding a number, accepting
// numeric strings as well. The value may be non-finite; callers that need
// coordinates must check.
func pickFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func pickBool(m map[string]any, keys ...string) (bool, bool) {
	for _, k := range keys {
		if v, ok := m[k].(bool); ok {
			return v, true
		}
	}
	return false, false
}

func pickMap(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if v, ok := m[k].(map[string]any); ok {
			return v, true
		}
	}
	return nil, false
}

// strPtr returns a pointer for optional canonical fields, nil when absent.
func strPtr(m map[string]any, keys ...string) *string {
	if s, ok := pickString(m, keys...); ok {
		return &s
	}
	return nil
}

func floatPtr(m map[string]any, keys ...string) *float64 {
	if f, ok := pickFloat(m, keys...); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return &f
	}
	return nil
}

// recordList unwraps a payload into a list of generic records. The payload
// may be a bare JSON array or an object wrapping the array under one of the
// candidate keys.
func recordList(payload []byte, keys ...string) ([]map[string]any, error) {
	var arr []map[string]any
	if err := json.Unmarshal(payload, &arr); err == nil {
		return arr, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, fmt.Errorf("feeds: payload is neither array nor object: %w", err)
	}
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, fmt.Errorf("feeds: field %q is not a record array: %w", k, err)
		}
		return arr, nil
	}
	return nil, fmt.Errorf("feeds: none of %v present in payload", keys)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// relativeMinutes turns an ambiguous upstream time value into minutes from
// now. Values above one day's worth of seconds are treated as epoch
// seconds, smaller ones as seconds since local midnight. The upstream
// contract is undocumented; this disambiguation is kept exactly as the
// deployed behavior.
func relativeMinutes(v float64, now time.Time) float64 {
	const daySeconds = 86400
	var deltaSec float64
	if v > daySeconds {
		deltaSec = v - float64(now.Unix())
	} else {
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		deltaSec = v - now.Sub(midnight).Seconds()
	}
	return math.Round(deltaSec / 60)
}

// absoluteTime renders the same ambiguous value as an RFC 3339 timestamp.
func absoluteTime(v float64, now time.Time) string {
	const daySeconds = 86400
	if v > daySeconds {
		return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.Add(time.Duration(v) * time.Second).Format(time.RFC3339)
}
