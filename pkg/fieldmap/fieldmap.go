package fieldmap

import "strings"

// Row is one parsed CSV row keyed by raw header.
type Row map[string]string

// Fields is one remote API record's field map.
type Fields map[string]interface{}

// Get returns the value for the first alias present in the row, matching
// header names case-insensitively. The bool reports whether any alias
// matched; an empty cell with a matching header still counts as found.
func Get(row Row, aliases ...string) (string, bool) {
	if len(row) == 0 {
		return "", false
	}
	lower := make(map[string]string, len(row))
	for k, v := range row {
		lower[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		if v, ok := lower[strings.ToLower(alias)]; ok {
			return v, true
		}
	}
	return "", false
}

// GetField is Get for API field maps, preserving the raw typed value.
func GetField(fields Fields, aliases ...string) (interface{}, bool) {
	if len(fields) == 0 {
		return nil, false
	}
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		if v, ok := fields[alias]; ok {
			return v, true
		}
		for k, v := range fields {
			if strings.EqualFold(k, alias) {
				return v, true
			}
		}
	}
	return nil, false
}

// HasAny reports whether any alias appears among the headers. Used to
// fail fast on a whole file before parsing rows.
func HasAny(headers []string, aliases []string) bool {
	lower := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		lower[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	for _, alias := range aliases {
		if _, ok := lower[strings.ToLower(alias)]; ok {
			return true
		}
	}
	return false
}
