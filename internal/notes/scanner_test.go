package notes

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "talks", "effect-intro.md"), "# Effect Intro\n\nbody\n")
	writeFile(t, filepath.Join(dir, "talks", "untitled-session.md"), "just notes, no heading\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# Session Notes\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not markdown\n")
	writeFile(t, filepath.Join(dir, ".obsidian", "hidden.md"), "# Hidden\n")
	writeFile(t, filepath.Join(dir, "broken.md"), "---\ntitle: oops\nno closing\n")
	writeFile(t, filepath.Join(dir, "stub.md"), "---")

	skipIndex := func(rel string) bool { return rel == "README.md" }

	files, scanErrs, err := ScanDirs([]string{dir, filepath.Join(dir, "does-not-exist")}, skipIndex)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(files) != 2 {
		paths := make([]string, 0, len(files))
		for _, f := range files {
			paths = append(paths, f.RelPath)
		}
		t.Fatalf("expected 2 files, got %v", paths)
	}

	byRel := map[string]*File{}
	for _, f := range files {
		byRel[f.RelPath] = f
	}

	if f := byRel["talks/effect-intro.md"]; f == nil {
		t.Error("missing talks/effect-intro.md")
	} else if f.Doc.Title != "Effect Intro" {
		t.Errorf("title = %q", f.Doc.Title)
	}

	if f := byRel["talks/untitled-session.md"]; f == nil {
		t.Error("missing talks/untitled-session.md")
	} else if f.Doc.Title != "untitled session" {
		t.Errorf("fallback title = %q", f.Doc.Title)
	}

	if len(scanErrs) != 2 {
		t.Fatalf("expected 2 scan errors, got %d: %v", len(scanErrs), scanErrs)
	}
	errPaths := map[string]bool{}
	for _, se := range scanErrs {
		errPaths[filepath.Base(se.Path)] = true
	}
	if !errPaths["broken.md"] || !errPaths["stub.md"] {
		t.Errorf("scan error paths = %v", scanErrs)
	}
}

func TestTitleFromFilename(t *testing.T) {
	for in, want := range map[string]string{
		"effect-error-handling.md": "effect error handling",
		"wasm_keynote.md":          "wasm keynote",
		"plain.md":                 "plain",
	} {
		if got := titleFromFilename(in); got != want {
			t.Errorf("titleFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
