package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/listat/internal/model"
	"golang.org/x/net/html/charset"
)

// Request identifies one page to load.
type Request struct {
	// SourceID names the source, e.g. "dontr.ru".
	SourceID string

	// URL is the full page URL including the period query.
	URL string

	// Cookie is a raw Cookie header value sent with this request only.
	Cookie string

	// Headers are sent with this request only.
	Headers map[string]string
}

// Fetcher loads the page of one source and returns it as UTF-8 text.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req Request) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// PageURL joins the statistics base URL and a counter path and adds the
// table query for period, e.g.
// https://www.liveinternet.ru/stat/dontr.ru/index.html?period=week&graph=table&total=yes
func PageURL(baseURL, path string, period model.Period) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	u := base.ResolveReference(ref)
	u.RawQuery = "period=" + url.QueryEscape(period.String()) + "&graph=table&total=yes"
	return u.String(), nil
}

// SourceID derives a source identifier from a counter path by removing the
// index.html suffix and surrounding slashes.
func SourceID(path string) string {
	path, _, _ = strings.Cut(path, "?")
	path = strings.TrimSuffix(path, "index.html")
	return strings.Trim(path, "/")
}

// decodeBody converts raw to UTF-8 using the declared content type, or the
// meta charset of the document when contentType is empty. A body without a
// declared type that is already valid UTF-8 is returned as is.
func decodeBody(raw []byte, contentType string) (string, error) {
	if contentType == "" && utf8.Valid(raw) {
		return string(raw), nil
	}
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", fmt.Errorf("failed to detect charset: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return string(decoded), nil
}
