package notes

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Meta holds parsed metadata from a note's YAML frontmatter.
type Meta struct {
	Title    string   `yaml:"title"`
	Speaker  string   `yaml:"speaker"`
	Date     string   `yaml:"date"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Summary  string   `yaml:"summary"`
}

// splitFrontmatter separates optional YAML frontmatter (delimited by ---
// markers) from the markdown body. Returns the parsed meta, the body, and
// the number of lines the frontmatter block occupied so parse positions in
// the body can be mapped back to file lines.
func splitFrontmatter(data []byte) (Meta, []byte, int, error) {
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		// A bare opener with nothing after it is an unclosed block, not a body.
		if strings.TrimRight(content, "\n") == "---" {
			return Meta{}, nil, 0, fmt.Errorf("no closing frontmatter delimiter")
		}
		return Meta{}, data, 0, nil
	}

	rest := content[4:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return Meta{}, nil, 0, fmt.Errorf("no closing frontmatter delimiter")
	}

	yamlBlock := rest[:idx]

	var meta Meta
	if err := yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return Meta{}, nil, 0, fmt.Errorf("parse yaml: %w", err)
	}

	meta.Title = strings.TrimSpace(meta.Title)
	meta.Summary = strings.TrimSpace(meta.Summary)

	body := rest[idx+4:]
	// Drop the remainder of the closing delimiter line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}

	fmLines := strings.Count(content[:len(content)-len(body)], "\n")
	return meta, []byte(body), fmLines, nil
}
