package models

// Note is the core domain entity: one scanned session-note document.
type Note struct {
	ID          string   `json:"id"`
	RelPath     string   `json:"relPath"`
	Title       string   `json:"title"`
	Speaker     string   `json:"speaker,omitempty"`
	Date        string   `json:"date,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags"`
	Summary     string   `json:"summary,omitempty"`
	ContentHash string   `json:"contentHash"`
	WordCount   int      `json:"wordCount"`
	ScannedAt   int64    `json:"scannedAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// LinkKind classifies where a link points.
type LinkKind string

const (
	LinkInternal LinkKind = "internal"
	LinkExternal LinkKind = "external"
	LinkAnchor   LinkKind = "anchor"
)

// Link is a hyperlink found in a note body.
type Link struct {
	ID         int64    `json:"id"`
	NoteID     string   `json:"noteId"`
	Target     string   `json:"target"`
	Kind       LinkKind `json:"kind"`
	Line       int      `json:"line"`
	Resolved   *bool    `json:"resolved,omitempty"`
	CheckedAt  *int64   `json:"checkedAt,omitempty"`
	StatusCode int      `json:"statusCode,omitempty"`
	CheckError string   `json:"checkError,omitempty"`
}

// SnippetKind separates tangleable code from diagram sources.
type SnippetKind string

const (
	SnippetCode    SnippetKind = "code"
	SnippetDiagram SnippetKind = "diagram"
)

// Snippet is a fenced code block embedded in a note.
type Snippet struct {
	ID         string      `json:"id"`
	NoteID     string      `json:"noteId"`
	Language   string      `json:"language,omitempty"`
	TanglePath string      `json:"tanglePath,omitempty"`
	Content    string      `json:"content"`
	Line       int         `json:"line"`
	Kind       SnippetKind `json:"kind"`
}

// Section is one heading in a note's outline. Sections are derived at parse
// time and returned with single-note reads; they are not persisted.
type Section struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Line  int    `json:"line"`
}
