// Package convert turns the exported literals of the TypeScript data modules
// into JSON files and extracts inline SVG markup into asset files.
package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja"
)

var (
	// ErrArrayNotFound is returned when a module has no matching export.
	ErrArrayNotFound = errors.New("export not found")

	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// ExtractArray evaluates `export const <name>(: Type)? = [ ... ];` from a
// TypeScript module and returns its records.
func ExtractArray(source, name string) ([]map[string]any, error) {
	var out []map[string]any
	if err := extract(source, name, '[', ']', &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, nil
}

// ExtractObject evaluates `export const <name>(: Type)? = { ... };`.
func ExtractObject(source, name string) (map[string]any, error) {
	var out map[string]any
	if err := extract(source, name, '{', '}', &out); err != nil {
		return nil, err
	}
	return out, nil
}

func extract(source, name string, opening, closing byte, dst any) error {
	body, ok := literalBody(source, name, opening, closing)
	if !ok {
		return fmt.Errorf("%w: %s", ErrArrayNotFound, name)
	}

	code := string(opening) + trailingComma.ReplaceAllString(stripComments(body), "$1") + string(closing)
	value, err := evaluate(code)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", name, err)
	}

	// Round trip through JSON so numbers and nested values come out as the
	// types encoding/json would produce for the written file.
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s is not the expected shape: %w", name, err)
	}
	return nil
}

// literalBody returns the text between the opening bracket and the first
// closing bracket that ends a line with a semicolon.
func literalBody(source, name string, opening, closing byte) (string, bool) {
	pattern := `(?ms)export\s+const\s+` + regexp.QuoteMeta(name) +
		`(?:\s*:\s*[^=]+?)?\s*=\s*` + regexp.QuoteMeta(string(opening)) +
		`(.*?)` + regexp.QuoteMeta(string(closing)) + `;[ \t]*$`
	m := regexp.MustCompile(pattern).FindStringSubmatch(source)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func evaluate(code string) (any, error) {
	vm := goja.New()
	v, err := vm.RunString("(" + code + ")")
	if err != nil {
		return nil, err
	}
	return v.Export(), nil
}

// stripComments drops // and /* */ comments outside of string literals.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(src) {
					i++
					b.WriteByte(src[i])
				}
			case quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'' || c == '`':
			quote = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
