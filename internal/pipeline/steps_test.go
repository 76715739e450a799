package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/recipecrawl/recipecrawl/internal/config"
	"github.com/recipecrawl/recipecrawl/internal/log"
	"github.com/recipecrawl/recipecrawl/internal/policy"
)

// TestLoadPolicyStep tests oracle construction from a cache file.
func TestLoadPolicyStep(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "robots-policy.yaml")
	err := policy.SaveCache(path, map[string]policy.DomainPolicy{
		"example.com": {Allowed: true, CrawlDelay: 5 * time.Second},
		"blocked.com": {Allowed: false},
	})
	if err != nil {
		t.Fatalf("failed to write cache: %v", err)
	}

	cfg := config.NewConfig()
	cfg.Seeds = []string{"example.com"}
	cfg.PolicyFile = path

	run := &Run{Config: cfg, RunID: "run-1"}
	step := NewLoadPolicyStep(log.NewLogger(testWriter{t}, false), nil)
	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	if run.Oracle == nil {
		t.Fatal("expected an oracle")
	}
	if run.Oracle.Allowed("blocked.com") {
		t.Error("expected blocked.com to be disallowed")
	}
	if got := run.Oracle.Delay("example.com"); got != 5*time.Second {
		t.Errorf("expected 5s crawl delay, got %s", got)
	}
	// Unknown domains are open with the interval floor.
	if !run.Oracle.Allowed("unknown.com") {
		t.Error("expected unknown domains to default to allowed")
	}
}

// TestLoadPolicyStepMissingCache tests that a fresh machine starts with an
// empty, default-open policy.
func TestLoadPolicyStepMissingCache(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Seeds = []string{"example.com"}
	cfg.PolicyFile = filepath.Join(t.TempDir(), "never-written.yaml")

	run := &Run{Config: cfg, RunID: "run-1"}
	step := NewLoadPolicyStep(log.NewLogger(testWriter{t}, false), nil)
	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if run.Oracle == nil || !run.Oracle.Allowed("example.com") {
		t.Error("expected a default-open oracle")
	}
}

// TestFullPipeline tests the composed run against a local site.
func TestFullPipeline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Home</title></head><body>
<p>Our favorite recipe collection, one dish at a time.</p>
</body></html>`)
	}))
	defer srv.Close()

	cfg := config.NewConfig()
	cfg.Seeds = []string{srv.URL}
	cfg.DBDir = t.TempDir()
	cfg.PolicyFile = filepath.Join(t.TempDir(), "policy.yaml")
	cfg.MinInterval = time.Millisecond
	cfg.MinBodySize = 10
	cfg.GlobalConcurrency = 4
	cfg.RequestTimeout = 2 * time.Second

	logger := log.NewLogger(testWriter{t}, true)
	var reportOut bytes.Buffer

	p := New(WithLogger(logger))
	p.AddSteps(
		NewLoadPolicyStep(logger, nil),
		NewSeedFrontierStep(logger),
		NewCrawlStep(logger),
		NewSummarizeStep(logger, &reportOut),
	)

	run := &Run{Config: cfg, RunID: "run-pipeline"}
	if err := p.Execute(context.Background(), run); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	defer run.Ledger.Close()

	if len(run.StepsRun) != 4 {
		t.Errorf("expected 4 steps to run, got %v", run.StepsRun)
	}
	if run.Summary == nil || run.Summary.Totals().Kept != 1 {
		t.Errorf("expected one kept page, got %+v", run.Summary)
	}

	out := reportOut.String()
	if !strings.Contains(out, "Crawl Summary") || !strings.Contains(out, "127.0.0.1") {
		t.Errorf("unexpected report output:\n%s", out)
	}
}
