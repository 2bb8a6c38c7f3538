package resource

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "wink/1.0 (compatible; Go)"

// UnavailableError reports a resource the pipeline could not obtain,
// whether because the network failed or because the content filter
// refused it. Consumers fall back to the placeholder path.
type UnavailableError struct {
	URL     string
	Reason  string
	Blocked bool // true when the content filter refused the fetch
}

func (e *UnavailableError) Error() string {
	if e.Blocked {
		return fmt.Sprintf("resource blocked by filter: %s", e.URL)
	}
	return fmt.Sprintf("resource unavailable: %s: %s", e.URL, e.Reason)
}

// Stream delivers a resource body in chunks as it arrives.
type Stream interface {
	io.ReadCloser
	ContentType() string
}

// Fetcher retrieves resources by URL.
type Fetcher interface {
	Fetch(rawURL string) (Stream, error)
}

// HTTPFetcher fetches over HTTP/HTTPS, resolving relative URLs
// against a base.
type HTTPFetcher struct {
	Base   string
	Client *http.Client
}

func NewHTTPFetcher(base string) *HTTPFetcher {
	return &HTTPFetcher{
		Base:   base,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPFetcher) Fetch(rawURL string) (Stream, error) {
	resolved := rawURL
	if !IsNetworkURL(rawURL) && f.Base != "" {
		resolved = ResolveURL(f.Base, rawURL)
	}
	if !IsNetworkURL(resolved) {
		return nil, &UnavailableError{URL: rawURL, Reason: "not a network URL"}
	}

	req, err := http.NewRequest("GET", resolved, nil)
	if err != nil {
		return nil, &UnavailableError{URL: resolved, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &UnavailableError{URL: resolved, Reason: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &UnavailableError{URL: resolved, Reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	return &httpStream{
		ReadCloser:  resp.Body,
		contentType: resp.Header.Get("Content-Type"),
	}, nil
}

type httpStream struct {
	io.ReadCloser
	contentType string
}

func (s *httpStream) ContentType() string { return s.contentType }

// FilteredFetcher consults a content filter before every fetch.
type FilteredFetcher struct {
	Fetcher Fetcher
	Filter  Filter
}

func (f *FilteredFetcher) Fetch(rawURL string) (Stream, error) {
	if f.Filter != nil && !f.Filter.Allow(rawURL) {
		return nil, &UnavailableError{URL: rawURL, Blocked: true}
	}
	return f.Fetcher.Fetch(rawURL)
}

// ResolveURL resolves a possibly-relative reference against a base
// URL. An unparseable input comes back unchanged.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL reports whether s is an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
