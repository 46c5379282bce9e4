package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/listat/internal/model"
	"golang.org/x/text/encoding/charmap"
)

const weeklyPage = `<html><body><pre>
16 дек 1234 567
15 дек 1100 500
</pre></body></html>`

// TestPageURL tests URL construction.
func TestPageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		path    string
		period  model.Period
		want    string
		wantErr bool
	}{
		{
			name:   "weekly",
			base:   "https://www.liveinternet.ru/stat/",
			path:   "dontr.ru/index.html",
			period: model.PeriodWeek,
			want:   "https://www.liveinternet.ru/stat/dontr.ru/index.html?period=week&graph=table&total=yes",
		},
		{
			name:   "base without trailing slash and nested path",
			base:   "https://www.liveinternet.ru/stat",
			path:   "/hsdigital/rn/smi/61/index.html",
			period: model.PeriodMonth,
			want:   "https://www.liveinternet.ru/stat/hsdigital/rn/smi/61/index.html?period=month&graph=table&total=yes",
		},
		{
			name:    "relative base",
			base:    "stat/",
			path:    "dontr.ru/index.html",
			period:  model.PeriodWeek,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := PageURL(tt.base, tt.path, tt.period)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Errorf("PageURL() error = %v, want ErrInvalidURL", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PageURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSourceID tests identifier derivation from counter paths.
func TestSourceID(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"dontr.ru/index.html":             "dontr.ru",
		"/hsdigital/rn/smi/61/index.html": "hsdigital/rn/smi/61",
		"don24.ru/":                       "don24.ru",
		"panram.ru/index.html?period=week": "panram.ru",
	}
	for path, want := range tests {
		if got := SourceID(path); got != want {
			t.Errorf("SourceID(%q) = %q, want %q", path, got, want)
		}
	}
}

// TestClientFetch tests HTTP fetching.
func TestClientFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns the page body", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(weeklyPage))
		}))
		defer srv.Close()

		client, err := NewClient(
			WithUserAgent("test-agent"),
			WithCookie("session=abc"),
			WithHeaders(map[string]string{"X-Test": "global"}),
			WithRateLimit(0),
		)
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}

		body, err := client.Fetch(context.Background(), Request{
			SourceID: "dontr.ru",
			URL:      srv.URL + "/dontr.ru/index.html",
			Cookie:   "per=source",
		})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if body != weeklyPage {
			t.Errorf("Fetch() = %q", body)
		}
		got := <-headers
		if ua := got.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q", ua)
		}
		if cookie := got.Get("Cookie"); cookie != "per=source" {
			t.Errorf("Cookie = %q, want the request cookie", cookie)
		}
		if h := got.Get("X-Test"); h != "global" {
			t.Errorf("X-Test = %q", h)
		}
		if h := got.Get("Accept-Language"); h != "ru,en;q=0.8" {
			t.Errorf("Accept-Language = %q", h)
		}
	})

	t.Run("client defaults fill in what the request leaves unset", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
			_, _ = w.Write([]byte(weeklyPage))
		}))
		defer srv.Close()

		client, err := NewClient(
			WithCookie("session=abc"),
			WithHeaders(map[string]string{"accept-language": "ru", "X-Test": "global"}),
			WithRateLimit(0),
		)
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}

		_, err = client.Fetch(context.Background(), Request{
			SourceID: "dontr.ru",
			URL:      srv.URL + "/dontr.ru/index.html",
			Headers:  map[string]string{"X-Test": "own"},
		})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		got := <-headers
		if cookie := got.Get("Cookie"); cookie != "session=abc" {
			t.Errorf("Cookie = %q", cookie)
		}
		if h := got.Get("Accept-Language"); h != "ru" {
			t.Errorf("Accept-Language = %q, want the configured default", h)
		}
		if h := got.Get("X-Test"); h != "own" {
			t.Errorf("X-Test = %q, want the request header", h)
		}
		if h := got.Get("Accept"); h == "" {
			t.Error("Accept header missing")
		}
	})

	t.Run("decodes windows-1251", func(t *testing.T) {
		t.Parallel()

		encoded, err := charmap.Windows1251.NewEncoder().String(weeklyPage)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=windows-1251")
			_, _ = w.Write([]byte(encoded))
		}))
		defer srv.Close()

		client, err := NewClient()
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		body, err := client.Fetch(context.Background(), Request{SourceID: "x", URL: srv.URL})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if body != weeklyPage {
			t.Errorf("Fetch() = %q, want %q", body, weeklyPage)
		}
	})

	t.Run("non-2xx is a StatusError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		client, err := NewClient()
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		_, err = client.Fetch(context.Background(), Request{SourceID: "x", URL: srv.URL})

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("Fetch() error = %v, want *StatusError", err)
		}
		if se.StatusCode != http.StatusForbidden {
			t.Errorf("StatusCode = %d", se.StatusCode)
		}
	})

	t.Run("body over the cap is rejected", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 2048)))
		}))
		defer srv.Close()

		client, err := NewClient(WithMaxBodySize(1024))
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		_, err = client.Fetch(context.Background(), Request{SourceID: "x", URL: srv.URL})
		if !errors.Is(err, ErrBodyTooLarge) {
			t.Errorf("Fetch() error = %v, want ErrBodyTooLarge", err)
		}
	})

	t.Run("rate limit spaces requests", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("<pre></pre>"))
		}))
		defer srv.Close()

		client, err := NewClient(WithRateLimit(20))
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}

		start := time.Now()
		for i := 0; i < 3; i++ {
			if _, err := client.Fetch(context.Background(), Request{SourceID: "x", URL: srv.URL}); err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
			t.Errorf("3 requests at 20/s took %v, want at least 80ms", elapsed)
		}
		if hits.Load() != 3 {
			t.Errorf("hits = %d, want 3", hits.Load())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient()
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := client.Fetch(ctx, Request{SourceID: "x", URL: "http://127.0.0.1:1/"}); err == nil {
			t.Error("Fetch() with cancelled context succeeded")
		}
	})
}

// TestNewClientProxy tests proxy address validation.
func TestNewClientProxy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr    string
		wantErr bool
	}{
		{addr: "127.0.0.1:9050"},
		{addr: "localhost:1080"},
		{addr: "127.0.0.1", wantErr: true},
		{addr: ":9050", wantErr: true},
		{addr: "127.0.0.1:0", wantErr: true},
		{addr: "127.0.0.1:70000", wantErr: true},
		{addr: "127.0.0.1:port", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.addr, func(t *testing.T) {
			t.Parallel()

			_, err := NewClient(WithProxy(tt.addr))
			if tt.wantErr && !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("NewClient(WithProxy(%q)) error = %v, want ErrInvalidProxyAddress", tt.addr, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("NewClient(WithProxy(%q)) error = %v", tt.addr, err)
			}
		})
	}
}

// TestDirFetcher tests offline page loading.
func TestDirFetcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hsdigital_rn_smi_61.html"), []byte(weeklyPage), 0o600); err != nil {
		t.Fatal(err)
	}
	d := NewDirFetcher(dir)

	t.Run("reads the saved page", func(t *testing.T) {
		t.Parallel()

		body, err := d.Fetch(context.Background(), Request{SourceID: "hsdigital/rn/smi/61"})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if body != weeklyPage {
			t.Errorf("Fetch() = %q", body)
		}
	})

	t.Run("decodes a saved windows-1251 page by its meta charset", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><meta charset="windows-1251"></head><body><pre>
16 дек 1234 567
</pre></body></html>`
		encoded, err := charmap.Windows1251.NewEncoder().String(page)
		if err != nil {
			t.Fatal(err)
		}
		cpDir := t.TempDir()
		if err := os.WriteFile(filepath.Join(cpDir, FileName("don24.ru")), []byte(encoded), 0o600); err != nil {
			t.Fatal(err)
		}

		body, err := NewDirFetcher(cpDir).Fetch(context.Background(), Request{SourceID: "don24.ru"})
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if body != page {
			t.Errorf("Fetch() = %q", body)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := d.Fetch(context.Background(), Request{SourceID: "dontr.ru"})
		if !errors.Is(err, ErrPageNotFound) {
			t.Errorf("Fetch() error = %v, want ErrPageNotFound", err)
		}
	})
}
