// Package linkcheck verifies that note hyperlinks resolve: internal links
// against the files on disk, external links (optionally) against the live
// web.
package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lanyardhq/lanyard/internal/models"
	"github.com/lanyardhq/lanyard/internal/store"
)

// Checker runs link checks over the whole catalog.
type Checker struct {
	linkStore *store.LinkStore
	locate    func(relPath string) string
	client    *http.Client
	workers   int
	logger    *slog.Logger
}

// New builds a Checker. locate resolves a note rel_path to its absolute
// file path (catalog.Service.Locate); timeout bounds each external request.
func New(linkStore *store.LinkStore, locate func(string) string, workers int, timeout time.Duration, logger *slog.Logger) *Checker {
	if workers < 1 {
		workers = 1
	}
	return &Checker{
		linkStore: linkStore,
		locate:    locate,
		client:    &http.Client{Timeout: timeout},
		workers:   workers,
		logger:    logger,
	}
}

// Run checks every stored link. Internal links are always checked; external
// links only when external is true (anchors and non-http schemes are
// skipped either way). Outcomes persist to the links table.
func (c *Checker) Run(ctx context.Context, external bool) (*models.CheckReport, error) {
	links, err := c.linkStore.ListAll()
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}

	report := &models.CheckReport{}
	var externalJobs []store.NoteLink

	for _, l := range links {
		switch l.Kind {
		case models.LinkInternal:
			res := c.checkInternal(l)
			c.record(l, res)
			report.Results = append(report.Results, res)
		case models.LinkExternal:
			if !external || !isHTTP(l.Target) {
				report.Skipped++
				continue
			}
			externalJobs = append(externalJobs, l)
		default:
			// Anchors would need per-file heading slugs; out of reach of
			// the stored link table, so they are reported as skipped.
			report.Skipped++
		}
	}

	if len(externalJobs) > 0 {
		results, err := c.checkExternal(ctx, externalJobs)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, results...)
	}

	sort.Slice(report.Results, func(i, j int) bool {
		a, b := report.Results[i], report.Results[j]
		if a.NotePath != b.NotePath {
			return a.NotePath < b.NotePath
		}
		return a.Line < b.Line
	})

	for _, r := range report.Results {
		report.Checked++
		if !r.OK {
			report.Broken++
		}
	}

	c.logger.Info("link check complete",
		"checked", report.Checked,
		"broken", report.Broken,
		"skipped", report.Skipped,
	)
	return report, nil
}

// checkInternal resolves a relative link against the linking note's
// directory. Anchor suffixes are stripped before the file test.
func (c *Checker) checkInternal(l store.NoteLink) models.LinkResult {
	res := models.LinkResult{
		NotePath: l.NotePath,
		Target:   l.Target,
		Kind:     l.Kind,
		Line:     l.Line,
	}

	noteAbs := c.locate(l.NotePath)
	if noteAbs == "" {
		res.Error = "linking note not found on disk"
		return res
	}

	target := l.Target
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		res.OK = true
		return res
	}

	abs := filepath.Join(filepath.Dir(noteAbs), filepath.FromSlash(target))
	if _, err := os.Stat(abs); err != nil {
		res.Error = "target does not exist"
		return res
	}
	res.OK = true
	return res
}

// checkExternal fans the jobs out over a bounded worker pool.
func (c *Checker) checkExternal(ctx context.Context, jobs []store.NoteLink) ([]models.LinkResult, error) {
	jobCh := make(chan store.NoteLink)
	results := make([]models.LinkResult, 0, len(jobs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := c.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for l := range jobCh {
				res := c.fetch(ctx, l)
				c.record(l, res)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}

	for _, l := range jobs {
		select {
		case jobCh <- l:
		case <-ctx.Done():
			close(jobCh)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobCh)
	wg.Wait()

	return results, nil
}

// fetch issues a HEAD request, falling back to GET for servers that reject
// HEAD. Any 2xx or 3xx status counts as resolved.
func (c *Checker) fetch(ctx context.Context, l store.NoteLink) models.LinkResult {
	res := models.LinkResult{
		NotePath: l.NotePath,
		Target:   l.Target,
		Kind:     l.Kind,
		Line:     l.Line,
	}

	status, err := c.request(ctx, http.MethodHead, l.Target)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = c.request(ctx, http.MethodGet, l.Target)
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.StatusCode = status
	res.OK = status >= 200 && status < 400
	if !res.OK {
		res.Error = fmt.Sprintf("status %d", status)
	}
	return res
}

func (c *Checker) request(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (c *Checker) record(l store.NoteLink, res models.LinkResult) {
	err := c.linkStore.RecordCheck(l.ID, res.OK, res.StatusCode, res.Error, time.Now().Unix())
	if err != nil {
		c.logger.Warn("failed to record link check", "target", l.Target, "error", err)
	}
}

func isHTTP(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}
