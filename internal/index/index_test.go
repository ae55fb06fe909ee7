package index

import (
	"strings"
	"testing"

	"github.com/lanyardhq/lanyard/internal/models"
)

func note(relPath, title, category string) *models.Note {
	return &models.Note{RelPath: relPath, Title: title, Category: category}
}

func TestBuild(t *testing.T) {
	catalog := []*models.Note{
		note("talks/zig.md", "Zig Allocators", "Languages"),
		note("talks/effect.md", "Effect Intro", "Libraries"),
		note("talks/effect-errors.md", "Effect Error Handling", "Libraries"),
		note("talks/lightning.md", "Lightning Talks", ""),
	}

	doc := Build(catalog, []string{"Libraries"})

	want := `# Session Notes

## Libraries

- [Effect Error Handling](talks/effect-errors.md)
- [Effect Intro](talks/effect.md)

## Languages

- [Zig Allocators](talks/zig.md)

## Uncategorized

- [Lightning Talks](talks/lightning.md)
`
	if doc != want {
		t.Errorf("index document mismatch:\n--- got ---\n%s--- want ---\n%s", doc, want)
	}

	t.Run("deterministic", func(t *testing.T) {
		if Build(catalog, []string{"Libraries"}) != doc {
			t.Error("two builds over the same catalog differ")
		}
	})

	t.Run("configured order wins", func(t *testing.T) {
		reordered := Build(catalog, []string{"Languages", "Libraries"})
		if strings.Index(reordered, "## Languages") > strings.Index(reordered, "## Libraries") {
			t.Error("category order not honored")
		}
	})
}

func TestParseEntries(t *testing.T) {
	src := []byte(`# Session Notes

## Libraries

- [Effect Intro](./talks/effect.md)
- [Docs](https://example.com/doc.md)
- [Jump](#libraries)

## Languages

- [Zig Allocators](talks/zig.md#allocators)
`)
	entries, err := ParseEntries(src)
	if err != nil {
		t.Fatalf("parse entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Target != "talks/effect.md" || entries[0].Category != "Libraries" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Target != "talks/zig.md" || entries[1].Category != "Languages" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestValidate(t *testing.T) {
	catalog := []*models.Note{
		note("talks/effect.md", "Effect Intro", "Libraries"),
		note("talks/zig.md", "Zig Allocators", "Languages"),
		note("talks/forgotten.md", "Forgotten Session", "Languages"),
		note("talks/stray.md", "Stray Notes", ""),
	}

	src := []byte(`# Session Notes

[Stray Notes](talks/stray.md)

## Libraries

- [Effect Intro](talks/effect.md)
- [Zig Allocators](talks/zig.md)

## Languages

- [Effect Intro](talks/effect.md)
- [Gone](talks/gone.md)
`)

	report, err := Validate(src, catalog)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.Valid() {
		t.Fatal("expected violations")
	}

	byKind := map[models.ViolationKind][]models.Violation{}
	for _, v := range report.Violations {
		byKind[v.Kind] = append(byKind[v.Kind], v)
	}

	if got := byKind[models.ViolationDuplicate]; len(got) != 1 || got[0].RelPath != "talks/effect.md" {
		t.Errorf("duplicate violations = %+v", got)
	}
	if got := byKind[models.ViolationDangling]; len(got) != 1 || got[0].RelPath != "talks/gone.md" {
		t.Errorf("dangling violations = %+v", got)
	}
	if got := byKind[models.ViolationMissing]; len(got) != 1 || got[0].RelPath != "talks/forgotten.md" {
		t.Errorf("missing violations = %+v", got)
	}
	if got := byKind[models.ViolationMiscategory]; len(got) != 1 || got[0].RelPath != "talks/zig.md" {
		t.Errorf("miscategorized violations = %+v", got)
	}
	if got := byKind[models.ViolationUncategorized]; len(got) != 1 || got[0].RelPath != "talks/stray.md" {
		t.Errorf("uncategorized violations = %+v", got)
	}
}

func TestValidateRoundTrip(t *testing.T) {
	catalog := []*models.Note{
		note("talks/effect.md", "Effect Intro", "Libraries"),
		note("talks/zig.md", "Zig Allocators", "Languages"),
	}
	doc := Build(catalog, nil)
	report, err := Validate([]byte(doc), catalog)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.Valid() {
		t.Errorf("generated index should validate cleanly, got %+v", report.Violations)
	}
	if report.Entries != 2 {
		t.Errorf("entries = %d", report.Entries)
	}
}
