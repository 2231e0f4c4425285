// Package frontmatter renders and parses the "---\n<yaml>\n---\n<body>"
// convention every persisted markdown artifact shares: journals, blog
// posts, and intake digests alike.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Render produces a full markdown document: a YAML front-matter block
// built from meta, followed by body.
func Render(meta any, body string) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimLeft(body, "\n"))
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Parse splits a rendered document back into its front-matter (decoded
// into meta) and body.
func Parse(data []byte, meta any) (body string, err error) {
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return text, nil
	}
	rest := text[4:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return text, nil
	}
	yamlBlock := rest[:end]
	remainder := rest[end+4:]
	remainder = strings.TrimPrefix(remainder, "\n")
	remainder = strings.TrimLeft(remainder, "\n")

	if meta != nil {
		if err := yaml.Unmarshal([]byte(yamlBlock), meta); err != nil {
			return "", fmt.Errorf("frontmatter: unmarshal: %w", err)
		}
	}
	return remainder, nil
}
