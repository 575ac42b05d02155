package decision

import (
	"strconv"
	"strings"
)

// ResolvePath walks a dot-separated path through nested maps and slices.
// Segments may carry array indexes, e.g. "signals[0].confidence". The second
// return value is false when any segment is missing or of the wrong shape.
func ResolvePath(data any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	current := data

	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := splitSegment(segment)
		if !ok {
			return nil, false
		}

		if name != "" {
			m, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}

			current, ok = m[name]
			if !ok {
				return nil, false
			}
		}

		for _, idx := range indexes {
			list, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(list) {
				return nil, false
			}

			current = list[idx]
		}
	}

	return current, true
}

// splitSegment parses "name[0][1]" into the name and its index chain.
func splitSegment(segment string) (string, []int, bool) {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		return segment, nil, segment != ""
	}

	name := segment[:open]
	rest := segment[open:]

	var indexes []int

	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}

		closing := strings.IndexByte(rest, ']')
		if closing < 0 {
			return "", nil, false
		}

		idx, err := strconv.Atoi(rest[1:closing])
		if err != nil {
			return "", nil, false
		}

		indexes = append(indexes, idx)
		rest = rest[closing+1:]
	}

	return name, indexes, true
}
