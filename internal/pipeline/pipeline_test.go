package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seotools/quickwin/internal/config"
	"github.com/seotools/quickwin/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(target string) *config.Config {
	cfg := config.NewConfig()
	cfg.Targets = []string{target}
	cfg.RequestsPerSecond = 1000
	cfg.FetchTimeout = 5 * time.Second
	return cfg
}

// fakeStep records execution order and optionally fails.
type fakeStep struct {
	name string
	err  error
	ran  *[]string
}

func (s *fakeStep) Name() string { return s.name }
func (s *fakeStep) Do(_ context.Context, _ *Audit) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func TestPipelineExecutesStepsInOrder(t *testing.T) {
	t.Parallel()

	var ran []string
	p := New(WithLogger(quietLogger()))
	p.AddSteps(
		&fakeStep{name: "first", ran: &ran},
		&fakeStep{name: "second", ran: &ran},
		&fakeStep{name: "third", ran: &ran},
	)

	audit := NewAudit("example.com", testConfig("example.com"))
	if err := p.Execute(context.Background(), audit); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(ran) != len(want) {
		t.Fatalf("ran = %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Errorf("ran[%d] = %q, want %q", i, ran[i], want[i])
		}
	}
}

func TestPipelineStopsOnStepError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var ran []string
	p := New(WithLogger(quietLogger()))
	p.AddSteps(
		&fakeStep{name: "first", ran: &ran},
		&fakeStep{name: "failing", err: boom, ran: &ran},
		&fakeStep{name: "never", ran: &ran},
	)

	audit := NewAudit("example.com", testConfig("example.com"))
	err := p.Execute(context.Background(), audit)
	if !errors.Is(err, boom) {
		t.Fatalf("Execute() error = %v, want boom", err)
	}
	if len(ran) != 2 {
		t.Errorf("ran = %v, want execution to stop after the failure", ran)
	}
}

func TestPipelineHonorsCancellation(t *testing.T) {
	t.Parallel()

	var ran []string
	p := New(WithLogger(quietLogger()))
	p.AddSteps(&fakeStep{name: "never", ran: &ran})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	audit := NewAudit("example.com", testConfig("example.com"))
	if err := p.Execute(ctx, audit); !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if len(ran) != 0 {
		t.Errorf("ran = %v, want no steps after cancellation", ran)
	}
}

// auditSite serves a small site with known defects: a sitemap listing
// four pages, two of which share a title, one thin, one broken.
func auditSite(t *testing.T) *httptest.Server {
	t.Helper()

	var srvURL string
	page := func(title, meta, h1, body string) string {
		head := "<head>"
		if title != "" {
			head += "<title>" + title + "</title>"
		}
		if meta != "" {
			head += `<meta name="description" content="` + meta + `">`
		}
		head += "</head>"
		h := ""
		if h1 != "" {
			h = "<h1>" + h1 + "</h1>"
		}
		return "<html>" + head + "<body>" + h + body + "</body></html>"
	}

	longMeta := "This is a carefully written meta description that lands inside the recommended range of one hundred twenty to one hundred sixty characters total."

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "Sitemap: "+srvURL+"/sitemap.xml\n")
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>`+srvURL+`/</loc></url>
<url><loc>`+srvURL+`/a</loc></url>
<url><loc>`+srvURL+`/b</loc></url>
<url><loc>`+srvURL+`/gone</loc></url>
</urlset>`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/":
			_, _ = io.WriteString(w, page(
				"Example Home With A Good Length Title", longMeta, "Welcome",
				`<p>`+lorem(400)+`</p><a href="`+srvURL+`/a">a</a><a href="`+srvURL+`/b">b</a><a href="`+srvURL+`/gone">gone</a>`))
		case "/a", "/b":
			_, _ = io.WriteString(w, page(
				"Shared Duplicate Title Used On Two Pages", longMeta, "Page",
				"<p>"+lorem(40)+"</p>"))
		default:
			http.NotFound(w, r)
		}
	})

	srv := httptest.NewServer(mux)
	srvURL = srv.URL
	t.Cleanup(srv.Close)
	return srv
}

func lorem(words int) string {
	out := ""
	for i := 0; i < words; i++ {
		out += "word "
	}
	return out
}

func TestRunnerEndToEnd(t *testing.T) {
	t.Parallel()

	srv := auditSite(t)
	cfg := testConfig(srv.URL)

	runner := NewRunner(cfg, quietLogger())
	result, err := runner.RunOne(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("RunOne() error = %v", err)
	}

	if result.Stats.DiscoveryMethod != "sitemap" {
		t.Errorf("DiscoveryMethod = %q, want sitemap", result.Stats.DiscoveryMethod)
	}
	if result.Stats.SitemapMissing {
		t.Error("SitemapMissing = true for a site with a sitemap")
	}
	if result.Stats.URLsAnalyzed != 3 {
		t.Errorf("URLsAnalyzed = %d, want 3 (the 404 is not analyzable)", result.Stats.URLsAnalyzed)
	}
	if result.Score <= 0 || result.Score >= 100 {
		t.Errorf("Score = %d, want a mid-range score for a flawed site", result.Score)
	}

	titles := result.AllFindings[model.CategoryTitles]
	foundDup := false
	for _, f := range titles {
		if f.Type == "duplicate_titles" {
			foundDup = true
			if f.Count != 2 {
				t.Errorf("duplicate_titles Count = %d, want 2", f.Count)
			}
		}
	}
	if !foundDup {
		t.Error("no duplicate_titles finding for two pages sharing a title")
	}

	foundThin := false
	for _, f := range result.AllFindings[model.CategoryContent] {
		if f.Type == "thin_content" {
			foundThin = true
		}
	}
	if !foundThin {
		t.Error("no thin_content finding for the short pages")
	}

	foundBroken := false
	for _, f := range result.AllFindings[model.CategoryLinks] {
		if f.Type == "broken_internal_link" {
			foundBroken = true
		}
	}
	if !foundBroken {
		t.Error("no broken_internal_link finding for the link to the 404 page")
	}

	if len(result.TopQuickWins) == 0 {
		t.Fatal("no quick wins for a flawed site")
	}
	for _, win := range result.TopQuickWins {
		if result.FindingFor(win) == nil {
			t.Errorf("quick win %s/%s has no backing finding", win.Category, win.Type)
		}
	}
}

func TestRunnerSitemapMissingBecomesTopWin(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<html><head><title>Lonely Page With A Reasonable Title</title></head><body><h1>Hi</h1><p>`+lorem(400)+`</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	runner := NewRunner(cfg, quietLogger())

	result, err := runner.RunOne(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("RunOne() error = %v", err)
	}

	if !result.Stats.SitemapMissing {
		t.Fatal("SitemapMissing = false for a site without a sitemap")
	}
	if len(result.TopQuickWins) == 0 {
		t.Fatal("no quick wins")
	}
	if result.TopQuickWins[0].Type != "sitemap_missing" {
		t.Errorf("first win = %q, want sitemap_missing", result.TopQuickWins[0].Type)
	}
	if result.FindingFor(result.TopQuickWins[0]) == nil {
		t.Error("sitemap_missing win has no backing finding in all_findings")
	}
}

func TestRunnerNoAnalyzablePages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	runner := NewRunner(cfg, quietLogger())

	_, err := runner.RunOne(context.Background(), srv.URL)
	if !errors.Is(err, ErrNoAnalyzablePages) {
		t.Errorf("RunOne() error = %v, want ErrNoAnalyzablePages", err)
	}
}
