package content

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var frontmatterDelim = []byte("---")

// ParseFrontmatter splits a Markdown entry into its YAML frontmatter and
// body. Expected format:
//
//	---
//	name: Oncology
//	slug: oncology
//	---
//	# Body
func ParseFrontmatter(content []byte) (map[string]any, string, error) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, "", errors.New("missing frontmatter: file must start with '---'")
	}

	lines := bytes.Split(content, []byte("\n"))
	closing := 0
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), frontmatterDelim) {
			closing = i
			break
		}
	}
	if closing == 0 {
		return nil, "", errors.New("missing closing frontmatter delimiter '---'")
	}

	var data map[string]any
	if err := yaml.Unmarshal(bytes.Join(lines[1:closing], []byte("\n")), &data); err != nil {
		return nil, "", fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}

	body := string(bytes.Join(lines[closing+1:], []byte("\n")))
	return data, body, nil
}
