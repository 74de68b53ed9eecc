package convert

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SVGRule moves inline SVG markup out of a record field into a file.
type SVGRule struct {
	Field     string // property holding the markup
	Dir       string // asset subdirectory, e.g. "logos"
	MoveTo    string // property receiving the path; empty replaces Field in place
	PrefixIDs bool   // name files "<export>-<id>.svg"
}

// IsSVG reports whether v is inline SVG markup.
func IsSVG(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(strings.TrimSpace(s), "<svg")
}

// ExtractSVGs writes every inline SVG in field to <dir>/<id>.svg and
// replaces the field with <urlPrefix>/<id>.svg. It returns the number of
// files written.
func ExtractSVGs(records []map[string]any, field, dir, urlPrefix string) (int, error) {
	return extractSVGs(records, SVGRule{Field: field}, "", dir, urlPrefix)
}

func extractSVGs(records []map[string]any, rule SVGRule, export, dir, urlPrefix string) (int, error) {
	written := 0
	for i, rec := range records {
		markup, ok := rec[rule.Field]
		if !ok || !IsSVG(markup) {
			continue
		}
		if written == 0 {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return 0, fmt.Errorf("create %s: %w", dir, err)
			}
		}

		name := recordKey(rec, i)
		if rule.PrefixIDs {
			name = export + "-" + name
		}
		file := name + ".svg"
		if err := os.WriteFile(filepath.Join(dir, file), []byte(markup.(string)), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", file, err)
		}

		ref := path.Join(urlPrefix, file)
		if rule.MoveTo != "" {
			rec[rule.MoveTo] = ref
			delete(rec, rule.Field)
		} else {
			rec[rule.Field] = ref
		}
		written++
	}
	return written, nil
}

// recordKey is the record's id, or its position when it has none.
func recordKey(rec map[string]any, index int) string {
	switch id := rec["id"].(type) {
	case string:
		if id != "" {
			return filepath.Base(id)
		}
	case nil:
	default:
		return fmt.Sprint(id)
	}
	return fmt.Sprint(index)
}
