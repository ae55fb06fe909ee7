package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lanyardhq/lanyard/internal/catalog"
	"github.com/lanyardhq/lanyard/internal/config"
	"github.com/lanyardhq/lanyard/internal/linkcheck"
	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/search"
	"github.com/lanyardhq/lanyard/internal/store"
	"github.com/lanyardhq/lanyard/internal/tangle"
)

type testServer struct {
	srv     *httptest.Server
	noteDir string
	cfg     *config.Config
}

func setupServer(t *testing.T, apiKey string) *testServer {
	t.Helper()

	noteDir := t.TempDir()
	cfg := &config.Config{
		Port:              8468,
		APIKey:            apiKey,
		NoteDirs:          []string{noteDir},
		IndexPath:         "README.md",
		CheckTimeoutSec:   5,
		CheckWorkers:      2,
		DefaultMinScore:   0.05,
		DefaultMaxResults: 10,
		TangleOutDir:      t.TempDir(),
	}

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	noteStore := store.NewNoteStore(db)
	linkStore := store.NewLinkStore(db)
	snippetStore := store.NewSnippetStore(db)

	catalogSvc := catalog.NewService(noteStore, linkStore, snippetStore, cfg.NoteDirs, cfg.IndexPath, nil, logger)
	searcher := search.NewSearcher(store.NewSearchStore(db), cfg.DefaultMinScore, cfg.DefaultMaxResults, cfg.RecencyBoost)
	checker := linkcheck.New(linkStore, catalogSvc.Locate, cfg.CheckWorkers, time.Duration(cfg.CheckTimeoutSec)*time.Second, logger)
	tangler := tangle.New(snippetStore, logger)

	r := NewRouter(db, catalogSvc, searcher, checker, tangler, noteStore, snippetStore, nil, cfg, logger)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return &testServer{srv: ts, noteDir: noteDir, cfg: cfg}
}

func (ts *testServer) writeNote(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(ts.noteDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write note: %v", err)
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ts.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+ts.cfg.APIKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

const apiNote = `---
title: Effect Intro
speaker: Jane Doe
category: Libraries
tags: [effects]
---

# Effect Intro

Notes about structured concurrency with [the index](../README.md).

` + "```ts tangle:src/main.ts\nconst a = 1\n```" + `
`

func TestHealth(t *testing.T) {
	ts := setupServer(t, "")

	resp := ts.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	health := decodeBody[models.HealthResponse](t, resp)
	if health.Status != "ok" || health.DB.Status != "ok" {
		t.Errorf("health = %+v", health)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
}

func TestScanAndListNotes(t *testing.T) {
	ts := setupServer(t, "")
	ts.writeNote(t, "talks/effect.md", apiNote)
	ts.writeNote(t, "talks/wasm.md", "# WASM Keynote\n\nnotes\n")

	resp := ts.do(t, http.MethodPost, "/scan", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scan status = %d", resp.StatusCode)
	}
	res := decodeBody[models.SyncResult](t, resp)
	if res.Added != 2 {
		t.Fatalf("scan result = %+v", res)
	}

	t.Run("list all", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/notes", nil)
		list := decodeBody[models.ListResponse](t, resp)
		if len(list.Notes) != 2 || list.Pagination.Total != 2 {
			t.Fatalf("list = %+v", list)
		}
	})

	t.Run("filter by category", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/notes?category=Libraries", nil)
		list := decodeBody[models.ListResponse](t, resp)
		if len(list.Notes) != 1 || list.Notes[0].Title != "Effect Intro" {
			t.Fatalf("list = %+v", list)
		}
	})

	t.Run("get detail", func(t *testing.T) {
		listResp := ts.do(t, http.MethodGet, "/notes?category=Libraries", nil)
		list := decodeBody[models.ListResponse](t, listResp)

		resp := ts.do(t, http.MethodGet, "/notes/"+list.Notes[0].ID, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		detail := decodeBody[models.NoteDetail](t, resp)
		if detail.Note.Speaker != "Jane Doe" {
			t.Errorf("note = %+v", detail.Note)
		}
		if len(detail.Sections) != 1 || len(detail.Links) != 1 || len(detail.Snippets) != 1 {
			t.Errorf("detail = %+v", detail)
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/notes/nope", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}

func TestSearchEndpoint(t *testing.T) {
	ts := setupServer(t, "")
	ts.writeNote(t, "talks/effect.md", apiNote)
	ts.do(t, http.MethodPost, "/scan", nil)

	t.Run("match", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/notes/search", models.SearchRequest{Query: "concurrency"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		sr := decodeBody[models.SearchResponse](t, resp)
		if len(sr.Results) != 1 || sr.Results[0].Title != "Effect Intro" {
			t.Fatalf("results = %+v", sr.Results)
		}
	})

	t.Run("empty query rejected", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/notes/search", models.SearchRequest{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/notes/search", map[string]any{"query": "x", "bogus": true})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}

func TestIndexEndpoints(t *testing.T) {
	ts := setupServer(t, "")
	ts.writeNote(t, "talks/effect.md", apiNote)
	ts.do(t, http.MethodPost, "/scan", nil)

	t.Run("generated index", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/index", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "- [Effect Intro](talks/effect.md)") {
			t.Errorf("index = %s", body)
		}
	})

	t.Run("validate without index document", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/index/validate", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("validate finds violations", func(t *testing.T) {
		ts.writeNote(t, "README.md", "# Session Notes\n\n## Libraries\n\n- [Gone](talks/gone.md)\n")
		resp := ts.do(t, http.MethodGet, "/index/validate", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		report := decodeBody[models.ValidationReport](t, resp)
		if len(report.Violations) != 2 {
			t.Errorf("report = %+v", report)
		}
	})
}

func TestLinksCheckEndpoint(t *testing.T) {
	ts := setupServer(t, "")
	ts.writeNote(t, "talks/effect.md", apiNote)
	ts.writeNote(t, "README.md", "# Session Notes\n")
	ts.do(t, http.MethodPost, "/scan", nil)

	// Empty body means defaults; must not 400.
	resp := ts.do(t, http.MethodPost, "/links/check", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	report := decodeBody[models.CheckReport](t, resp)
	if report.Checked != 1 || report.Broken != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestSnippetEndpoints(t *testing.T) {
	ts := setupServer(t, "")
	ts.writeNote(t, "talks/effect.md", apiNote)
	ts.do(t, http.MethodPost, "/scan", nil)

	t.Run("list", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/snippets?language=ts", nil)
		var body struct {
			Snippets []models.Snippet `json:"snippets"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Snippets) != 1 || body.Snippets[0].TanglePath != "src/main.ts" {
			t.Fatalf("snippets = %+v", body.Snippets)
		}
	})

	t.Run("tangle dry run", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/snippets/tangle", models.TangleRequest{DryRun: true})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		result := decodeBody[models.TangleResult](t, resp)
		if !result.DryRun || len(result.Files) != 1 || result.Files[0].Path != "src/main.ts" {
			t.Fatalf("result = %+v", result)
		}
		if _, err := os.Stat(filepath.Join(ts.cfg.TangleOutDir, "src", "main.ts")); !os.IsNotExist(err) {
			t.Error("dry run wrote a file")
		}
	})

	t.Run("tangle writes", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/snippets/tangle", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		data, err := os.ReadFile(filepath.Join(ts.cfg.TangleOutDir, "src", "main.ts"))
		if err != nil {
			t.Fatalf("read tangled file: %v", err)
		}
		if string(data) != "const a = 1\n" {
			t.Errorf("content = %q", data)
		}
	})
}

func TestBearerAuth(t *testing.T) {
	ts := setupServer(t, "sekrit")

	t.Run("health stays open", func(t *testing.T) {
		resp, err := http.Get(ts.srv.URL + "/health")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("missing token rejected", func(t *testing.T) {
		resp, err := http.Get(ts.srv.URL + "/notes")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, ts.srv.URL+"/notes", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("valid token accepted", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/notes", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}
