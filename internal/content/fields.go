package content

import (
	"fmt"
	"strconv"
	"strings"
)

// str returns the first non-empty value among keys, formatted as a string.
// Records come in both the camelCase shape of the data modules and the
// snake_case shape of the database.
func str(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case nil:
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func strPtr(rec map[string]any, keys ...string) *string {
	if s := str(rec, keys...); s != "" {
		return &s
	}
	return nil
}

func floatPtr(rec map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func intPtr(rec map[string]any, keys ...string) *int {
	if f := floatPtr(rec, keys...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

func strList(rec map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return v
		}
	}
	return []string{}
}
