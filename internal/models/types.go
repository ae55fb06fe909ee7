package models

// ListRequest holds parsed query params for GET /notes.
// Sort whitelist: "title", "rel_path", "updated_at", "scanned_at", "word_count"
type ListRequest struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Sort     string `json:"sort"`
	Order    string `json:"order"`
	Category string `json:"category"`
	Speaker  string `json:"speaker"`
	Tag      string `json:"tag"`
}

// Pagination holds pagination metadata.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListResponse is returned from GET /notes.
type ListResponse struct {
	Notes      []*Note    `json:"notes"`
	Pagination Pagination `json:"pagination"`
}

// NoteDetail is returned from GET /notes/{id}: stored metadata plus the
// outline and snippets re-parsed from the file on disk.
type NoteDetail struct {
	Note     *Note     `json:"note"`
	Sections []Section `json:"sections"`
	Snippets []Snippet `json:"snippets"`
	Links    []Link    `json:"links"`
}

// SearchRequest is the payload for POST /notes/search. MinScore nil means
// the configured default floor; an explicit 0 disables filtering.
type SearchRequest struct {
	Query      string   `json:"query"`
	MaxResults int      `json:"maxResults"`
	MinScore   *float64 `json:"minScore"`
	Category   string   `json:"category"`
	Tag        string   `json:"tag"`
}

// SearchResult is a single result from a search.
type SearchResult struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	RelPath   string  `json:"relPath"`
	Category  string  `json:"category,omitempty"`
	Score     float64 `json:"score"`
	Preview   string  `json:"preview"`
	UpdatedAt int64   `json:"updatedAt"`
}

// SearchResponse is returned from POST /notes/search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Meta    SearchMeta     `json:"meta"`
}

type SearchMeta struct {
	TotalResults int `json:"totalResults"`
	SearchTimeMs int `json:"searchTimeMs"`
}

// SyncResult reports what happened during a catalog scan.
type SyncResult struct {
	Found   int `json:"found"`
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	Errors  int `json:"errors"`
}

// CheckRequest is the payload for POST /links/check.
type CheckRequest struct {
	External bool `json:"external"`
}

// LinkResult is the outcome of checking one link.
type LinkResult struct {
	NotePath   string   `json:"notePath"`
	Target     string   `json:"target"`
	Kind       LinkKind `json:"kind"`
	Line       int      `json:"line"`
	OK         bool     `json:"ok"`
	StatusCode int      `json:"statusCode,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// CheckReport is returned from POST /links/check.
type CheckReport struct {
	Checked int          `json:"checked"`
	Broken  int          `json:"broken"`
	Skipped int          `json:"skipped"`
	Results []LinkResult `json:"results"`
}

// ViolationKind classifies index validation findings.
type ViolationKind string

const (
	ViolationMissing       ViolationKind = "missing"        // note on disk absent from index
	ViolationDuplicate     ViolationKind = "duplicate"      // note listed under more than one category
	ViolationDangling      ViolationKind = "dangling"       // index link with no note behind it
	ViolationMiscategory   ViolationKind = "miscategorized" // index placement disagrees with frontmatter
	ViolationUncategorized ViolationKind = "uncategorized"  // note has no category anywhere
)

// Violation is one index validation finding.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	RelPath  string        `json:"relPath"`
	Category string        `json:"category,omitempty"`
	Detail   string        `json:"detail,omitempty"`
}

// ValidationReport is returned from GET /index/validate.
type ValidationReport struct {
	Entries    int         `json:"entries"`
	Violations []Violation `json:"violations"`
}

// Valid reports whether the index satisfies every invariant.
func (r *ValidationReport) Valid() bool { return len(r.Violations) == 0 }

// TangleRequest is the payload for POST /snippets/tangle.
type TangleRequest struct {
	OutDir string `json:"outDir"`
	DryRun bool   `json:"dryRun"`
}

// TangledFile is one output file produced (or planned) by a tangle run.
type TangledFile struct {
	Path     string `json:"path"`
	Snippets int    `json:"snippets"`
	Bytes    int    `json:"bytes"`
}

// TangleResult is returned from POST /snippets/tangle.
type TangleResult struct {
	Files   []TangledFile `json:"files"`
	Skipped int           `json:"skipped"`
	DryRun  bool          `json:"dryRun"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status    string       `json:"status"`
	DB        ServiceCheck `json:"db"`
	NoteDirs  ServiceCheck `json:"noteDirs"`
	NoteCount int          `json:"noteCount"`
}

type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
