package notes

import (
	"strings"
	"testing"

	"github.com/lanyardhq/lanyard/internal/models"
)

const sampleNote = `---
title: Effect for TypeScript developers
speaker: Jane Doe
date: 2025-06-12 10:30
category: Libraries
tags:
  - effects
  - typescript
---

# Effect for TypeScript developers

Intro notes and [the outline](../README.md) plus [docs](https://effect.website)
and a [section jump](#error-handling).

## Error handling

` + "```ts tangle:src/errors.ts" + `
const fail = Effect.fail(new HttpError())
` + "```" + `

## Architecture

` + "```mermaid" + `
graph TD; A-->B;
` + "```" + `
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleNote))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	t.Run("frontmatter", func(t *testing.T) {
		if doc.Meta.Title != "Effect for TypeScript developers" {
			t.Errorf("title = %q", doc.Meta.Title)
		}
		if doc.Meta.Speaker != "Jane Doe" {
			t.Errorf("speaker = %q", doc.Meta.Speaker)
		}
		if doc.Meta.Category != "Libraries" {
			t.Errorf("category = %q", doc.Meta.Category)
		}
		if len(doc.Meta.Tags) != 2 || doc.Meta.Tags[0] != "effects" {
			t.Errorf("tags = %v", doc.Meta.Tags)
		}
	})

	t.Run("sections", func(t *testing.T) {
		if len(doc.Sections) != 3 {
			t.Fatalf("expected 3 sections, got %d: %v", len(doc.Sections), doc.Sections)
		}
		if doc.Sections[0].Level != 1 || doc.Sections[0].Title != "Effect for TypeScript developers" {
			t.Errorf("section 0 = %+v", doc.Sections[0])
		}
		if doc.Sections[1].Title != "Error handling" || doc.Sections[1].Level != 2 {
			t.Errorf("section 1 = %+v", doc.Sections[1])
		}
	})

	t.Run("links classified", func(t *testing.T) {
		if len(doc.Links) != 3 {
			t.Fatalf("expected 3 links, got %d: %v", len(doc.Links), doc.Links)
		}
		kinds := map[string]models.LinkKind{}
		for _, l := range doc.Links {
			kinds[l.Target] = l.Kind
		}
		if kinds["../README.md"] != models.LinkInternal {
			t.Errorf("README link kind = %s", kinds["../README.md"])
		}
		if kinds["https://effect.website"] != models.LinkExternal {
			t.Errorf("docs link kind = %s", kinds["https://effect.website"])
		}
		if kinds["#error-handling"] != models.LinkAnchor {
			t.Errorf("anchor link kind = %s", kinds["#error-handling"])
		}
	})

	t.Run("snippets", func(t *testing.T) {
		if len(doc.Snippets) != 2 {
			t.Fatalf("expected 2 snippets, got %d", len(doc.Snippets))
		}

		code := doc.Snippets[0]
		if code.Language != "ts" {
			t.Errorf("language = %q", code.Language)
		}
		if code.TanglePath != "src/errors.ts" {
			t.Errorf("tangle path = %q", code.TanglePath)
		}
		if code.Kind != models.SnippetCode {
			t.Errorf("kind = %s", code.Kind)
		}
		if !strings.Contains(code.Content, "Effect.fail") {
			t.Errorf("content = %q", code.Content)
		}

		diagram := doc.Snippets[1]
		if diagram.Kind != models.SnippetDiagram {
			t.Errorf("diagram kind = %s", diagram.Kind)
		}
		if diagram.TanglePath != "" {
			t.Errorf("diagram should not tangle, got %q", diagram.TanglePath)
		}
	})

	t.Run("content hash is stable", func(t *testing.T) {
		again, err := Parse([]byte(sampleNote))
		if err != nil {
			t.Fatalf("reparse failed: %v", err)
		}
		if doc.ContentHash != again.ContentHash {
			t.Error("hash changed between parses of identical input")
		}
		if doc.ContentHash == "" {
			t.Error("empty hash")
		}
	})
}

func TestParseTitleFallback(t *testing.T) {
	doc, err := Parse([]byte("# From The Heading\n\nbody\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Title != "From The Heading" {
		t.Errorf("title = %q", doc.Title)
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	doc, err := Parse([]byte("plain text, no metadata\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Meta.Title != "" || doc.Title != "" {
		t.Errorf("unexpected title %q", doc.Title)
	}
	if doc.WordCount != 4 {
		t.Errorf("word count = %d", doc.WordCount)
	}
}

func TestParseUnclosedFrontmatter(t *testing.T) {
	for _, in := range []string{
		"---\ntitle: broken\n\nno closing marker\n",
		"---",
		"---\n",
		"---\n\n",
	} {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("Parse(%q): expected error for unclosed frontmatter", in)
		}
	}
}

func TestParseInfo(t *testing.T) {
	for _, tc := range []struct {
		info, lang, path string
	}{
		{"go", "go", ""},
		{"ts tangle:src/main.ts", "ts", "src/main.ts"},
		{"", "", ""},
		{"tangle:a.txt", "tangle:a.txt", ""}, // language field comes first
	} {
		lang, path := parseInfo(tc.info)
		if lang != tc.lang || path != tc.path {
			t.Errorf("parseInfo(%q) = %q, %q; want %q, %q", tc.info, lang, path, tc.lang, tc.path)
		}
	}
}
