package notes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/lanyardhq/lanyard/internal/models"
)

// Document is the parse result for one session-note file.
type Document struct {
	Meta        Meta
	Title       string
	Sections    []models.Section
	Links       []models.Link
	Snippets    []models.Snippet
	Body        string
	WordCount   int
	ContentHash string
}

// diagramLangs are fence languages treated as diagram sources rather than
// tangleable code.
var diagramLangs = map[string]bool{
	"mermaid":  true,
	"dot":      true,
	"graphviz": true,
	"plantuml": true,
	"d2":       true,
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse reads a session-note file: YAML frontmatter, then the markdown body
// for the section outline, hyperlinks, and fenced code blocks. Line numbers
// refer to the original file, frontmatter included.
func Parse(data []byte) (*Document, error) {
	meta, body, fmLines, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}

	sum := sha256.Sum256(data)
	doc := &Document{
		Meta:        meta,
		Title:       meta.Title,
		Body:        string(body),
		WordCount:   len(strings.Fields(string(body))),
		ContentHash: hex.EncodeToString(sum[:]),
	}

	lines := newLineIndex(body, fmLines)
	root := md.Parser().Parse(text.NewReader(body))

	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := nodeText(node, body)
			doc.Sections = append(doc.Sections, models.Section{
				Level: node.Level,
				Title: title,
				Line:  lines.at(blockOffset(node)),
			})
			if doc.Title == "" && node.Level == 1 {
				doc.Title = title
			}
		case *ast.Link:
			doc.addLink(string(node.Destination), lines.at(blockOffset(node)))
		case *ast.AutoLink:
			doc.addLink(string(node.URL(body)), lines.at(blockOffset(node)))
		case *ast.FencedCodeBlock:
			doc.addSnippet(node, body, lines)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}

	return doc, nil
}

func (d *Document) addLink(target string, line int) {
	if target == "" {
		return
	}
	d.Links = append(d.Links, models.Link{
		Target: target,
		Kind:   ClassifyLink(target),
		Line:   line,
	})
}

func (d *Document) addSnippet(node *ast.FencedCodeBlock, src []byte, lines *lineIndex) {
	var info string
	if node.Info != nil {
		info = string(node.Info.Segment.Value(src))
	}
	language, tanglePath := parseInfo(info)

	var b strings.Builder
	segs := node.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		b.Write(seg.Value(src))
	}

	kind := models.SnippetCode
	if diagramLangs[language] {
		kind = models.SnippetDiagram
	}

	// Position of the opening fence. The info segment sits on the fence
	// line; without one, back up from the first content line.
	line := 0
	if node.Info != nil {
		line = lines.at(node.Info.Segment.Start)
	} else if segs.Len() > 0 {
		line = lines.at(segs.At(0).Start) - 1
	}

	d.Snippets = append(d.Snippets, models.Snippet{
		Language:   language,
		TanglePath: tanglePath,
		Content:    b.String(),
		Line:       line,
		Kind:       kind,
	})
}

// parseInfo splits a fence info string like "ts tangle:src/main.ts" into
// the language and an optional tangle directive.
func parseInfo(info string) (language, tanglePath string) {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return "", ""
	}
	language = fields[0]
	for _, f := range fields[1:] {
		if p, ok := strings.CutPrefix(f, "tangle:"); ok {
			tanglePath = p
		}
	}
	return language, tanglePath
}

// ClassifyLink decides whether a link target is an in-repo relative path,
// an external URL, or a same-document anchor.
func ClassifyLink(target string) models.LinkKind {
	if strings.HasPrefix(target, "#") {
		return models.LinkAnchor
	}
	if u, err := url.Parse(target); err == nil && u.Scheme != "" {
		return models.LinkExternal
	}
	return models.LinkInternal
}

// nodeText collects the raw text of a node's inline children.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
		default:
			b.WriteString(nodeText(c, src))
		}
	}
	return strings.TrimSpace(b.String())
}

// blockOffset finds a byte offset for a node by climbing to the nearest
// block ancestor that knows its source position.
func blockOffset(n ast.Node) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() != ast.TypeBlock {
			continue
		}
		if segs := cur.Lines(); segs != nil && segs.Len() > 0 {
			return segs.At(0).Start
		}
	}
	return 0
}

// lineIndex maps byte offsets in the body to 1-based file line numbers,
// accounting for lines consumed by the frontmatter block.
type lineIndex struct {
	starts []int
	offset int
}

func newLineIndex(body []byte, fmLines int) *lineIndex {
	starts := []int{0}
	for i, c := range body {
		if c == '\n' && i+1 < len(body) {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts, offset: fmLines}
}

func (li *lineIndex) at(off int) int {
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > off })
	return i + li.offset
}
