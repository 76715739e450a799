package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/recipecrawl/recipecrawl/internal/config"
	"github.com/recipecrawl/recipecrawl/internal/frontier"
	"github.com/recipecrawl/recipecrawl/internal/log"
	"github.com/recipecrawl/recipecrawl/internal/model"
)

// recipeHTML is a minimal body that passes content screening.
const recipeHTML = `<html><head><title>Pasta Carbonara</title></head>
<body><h1>Pasta Carbonara</h1>
<p>A classic recipe. Ingredient list: eggs, guanciale, pecorino.</p>
<a href="/recipes/amatriciana">next recipe</a>
<a href="https://other-site.invalid/recipes/1">elsewhere</a>
</body></html>`

// newTestExecutor builds an executor aimed at a local test server.
func newTestExecutor(t *testing.T, mutate func(*config.Config)) *Executor {
	t.Helper()

	cfg := config.NewConfig()
	cfg.RequestTimeout = 2 * time.Second
	cfg.MinBodySize = 10
	if mutate != nil {
		mutate(cfg)
	}

	return New(cfg, []string{"127.0.0.1"}, log.NewLogger(testWriter{t}, false),
		WithBackoffBase(time.Millisecond))
}

// testWriter routes executor logs into the test log.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func entryFor(rawURL string) frontier.Entry {
	return frontier.Entry{
		URL:           rawURL,
		NormalizedURL: rawURL,
		Domain:        "127.0.0.1",
		Depth:         1,
	}
}

// TestFetchSuccess tests the happy path: body kept, links harvested.
func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, recipeHTML)
	}))
	defer srv.Close()

	e := newTestExecutor(t, nil)
	outcome := e.Fetch(context.Background(), entryFor(srv.URL+"/recipes/carbonara"))

	if outcome.Status != model.StatusSuccess {
		t.Fatalf("expected success, got %v (http %d)", outcome.Status, outcome.HTTPCode)
	}
	if outcome.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", outcome.Attempts)
	}
	if outcome.Page == nil {
		t.Fatal("expected a kept page")
	}
	if outcome.Page.Title != "Pasta Carbonara" {
		t.Errorf("expected extracted title, got %q", outcome.Page.Title)
	}
	if outcome.Page.Hash == "" {
		t.Error("expected content hash to be computed")
	}

	// The relative link resolves in scope; the absolute one is off scope.
	if len(outcome.ExtractedLinks) != 1 {
		t.Fatalf("expected 1 in-scope link, got %v", outcome.ExtractedLinks)
	}
	if outcome.ExtractedLinks[0] != srv.URL+"/recipes/amatriciana" {
		t.Errorf("unexpected link %q", outcome.ExtractedLinks[0])
	}
}

// TestFetchRecipeStructuredData tests JSON-LD detection.
func TestFetchRecipeStructuredData(t *testing.T) {
	t.Parallel()

	body := `<html><head><title>Stew</title>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Recipe","name":"Stew"}</script>
</head><body><p>Slow-cooked beef stew with root vegetables and thyme sprigs.</p></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	e := newTestExecutor(t, nil)
	outcome := e.Fetch(context.Background(), entryFor(srv.URL+"/stew"))

	if outcome.Status != model.StatusSuccess {
		t.Fatalf("expected success, got %v", outcome.Status)
	}
	if !outcome.Page.RecipeSignal {
		t.Error("expected recipe structured data to be detected")
	}
}

// TestFetchNotFoundIsTerminal tests that ordinary 4xx answers are not retried.
func TestFetchNotFoundIsTerminal(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := newTestExecutor(t, nil)
	outcome := e.Fetch(context.Background(), entryFor(srv.URL+"/gone"))

	if outcome.Status != model.StatusHTTPError || outcome.HTTPCode != http.StatusNotFound {
		t.Errorf("expected http_error 404, got %v %d", outcome.Status, outcome.HTTPCode)
	}
	if outcome.Attempts != 1 || hits.Load() != 1 {
		t.Errorf("expected exactly 1 attempt, got attempts=%d hits=%d", outcome.Attempts, hits.Load())
	}
}

// TestFetchServiceUnavailableRetried tests retry on 503 with Retry-After.
func TestFetchServiceUnavailableRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, recipeHTML)
	}))
	defer srv.Close()

	e := newTestExecutor(t, nil)
	outcome := e.Fetch(context.Background(), entryFor(srv.URL+"/busy"))

	if outcome.Status != model.StatusSuccess {
		t.Fatalf("expected eventual success, got %v (http %d)", outcome.Status, outcome.HTTPCode)
	}
	if outcome.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", outcome.Attempts)
	}
}

// TestFetchRetriesExhausted tests that transient failures stop after the
// configured attempt budget.
func TestFetchRetriesExhausted(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := newTestExecutor(t, func(cfg *config.Config) { cfg.MaxRetries = 1 })
	outcome := e.Fetch(context.Background(), entryFor(srv.URL+"/down"))

	if outcome.Status != model.StatusHTTPError || outcome.HTTPCode != http.StatusServiceUnavailable {
		t.Errorf("expected terminal 503, got %v %d", outcome.Status, outcome.HTTPCode)
	}
	if outcome.Attempts != 2 || hits.Load() != 2 {
		t.Errorf("expected 2 attempts, got attempts=%d hits=%d", outcome.Attempts, hits.Load())
	}
}

// TestFetchTimeout tests per-attempt timeout classification and retry.
func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	e := newTestExecutor(t, func(cfg *config.Config) {
		cfg.RequestTimeout = 50 * time.Millisecond
		cfg.MaxRetries = 1
	})
	outcome := e.Fetch(context.Background(), entryFor(srv.URL+"/slow"))

	if outcome.Status != model.StatusTimeout {
		t.Errorf("expected timeout, got %v", outcome.Status)
	}
	if outcome.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", outcome.Attempts)
	}
}

// TestFetchRedirectLimit tests that long redirect chains are terminal.
func TestFetchRedirectLimit(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	for i := 0; i < 5; i++ {
		from, to := fmt.Sprintf("/hop/%d", i), fmt.Sprintf("/hop/%d", i+1)
		mux.HandleFunc(from, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, to, http.StatusFound)
		})
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := newTestExecutor(t, func(cfg *config.Config) { cfg.MaxRedirects = 2 })
	outcome := e.Fetch(context.Background(), entryFor(srv.URL+"/hop/0"))

	if outcome.Status != model.StatusHTTPError {
		t.Errorf("expected http_error for redirect chain, got %v", outcome.Status)
	}
	if outcome.Attempts != 1 {
		t.Errorf("expected no retries, got %d attempts", outcome.Attempts)
	}
}

// TestFetchFollowsRedirectWithinLimit tests FinalURL after a short chain.
func TestFetchFollowsRedirectWithinLimit(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, recipeHTML)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := newTestExecutor(t, nil)
	outcome := e.Fetch(context.Background(), entryFor(srv.URL+"/old"))

	if outcome.Status != model.StatusSuccess {
		t.Fatalf("expected success, got %v", outcome.Status)
	}
	if outcome.FinalURL != srv.URL+"/new" {
		t.Errorf("expected final URL %q, got %q", srv.URL+"/new", outcome.FinalURL)
	}
}

// TestFetchContentRejectedKeepsLinks tests that screened-out pages still
// contribute their outbound links.
func TestFetchContentRejectedKeepsLinks(t *testing.T) {
	t.Parallel()

	body := `<html><head><title>Site Map</title></head><body>
<p>All sections of this website are listed below for navigation.</p>
<a href="/recipes/a">a</a> <a href="/recipes/b">b</a>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	e := newTestExecutor(t, nil)
	outcome := e.Fetch(context.Background(), entryFor(srv.URL+"/sitemap"))

	if outcome.Status != model.StatusContentRejected {
		t.Fatalf("expected content_rejected, got %v", outcome.Status)
	}
	if outcome.Page != nil {
		t.Error("expected no kept page for rejected content")
	}
	if len(outcome.ExtractedLinks) != 2 {
		t.Errorf("expected 2 links from rejected page, got %v", outcome.ExtractedLinks)
	}
}

// TestFetchCancellationStopsRetries tests that crawl shutdown cuts the
// retry sequence short.
func TestFetchCancellationStopsRetries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	e := newTestExecutor(t, func(cfg *config.Config) { cfg.MaxRetries = 5 })
	start := time.Now()
	outcome := e.Fetch(ctx, entryFor(srv.URL+"/slow"))

	if outcome.Attempts != 1 {
		t.Errorf("expected cancellation to stop after 1 attempt, got %d", outcome.Attempts)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch did not return promptly after cancellation: %s", elapsed)
	}
}
