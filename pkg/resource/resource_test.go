package resource

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveURL(t *testing.T) {
	cases := []struct {
		base, ref, want string
	}{
		{"http://example.com/a/b.html", "c.css", "http://example.com/a/c.css"},
		{"http://example.com/a/b.html", "/c.css", "http://example.com/c.css"},
		{"http://example.com/a/", "../up.png", "http://example.com/up.png"},
		{"http://example.com/", "https://other.com/x", "https://other.com/x"},
	}
	for _, tc := range cases {
		if got := ResolveURL(tc.base, tc.ref); got != tc.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tc.base, tc.ref, got, tc.want)
		}
	}
}

func TestHTTPFetcher_StreamsBodyAndContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, "<p>hello</p>")
	}))
	defer srv.Close()

	stream, err := NewHTTPFetcher("").Fetch(srv.URL + "/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()
	if stream.ContentType() != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type %q", stream.ContentType())
	}
	body, _ := io.ReadAll(stream)
	if string(body) != "<p>hello</p>" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestHTTPFetcher_ResolvesAgainstBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/assets/site.css" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "p{}")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL + "/index.html")
	stream, err := f.Fetch("assets/site.css")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stream.Close()
}

func TestHTTPFetcher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewHTTPFetcher("").Fetch(srv.URL + "/missing")
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if unavailable.Blocked {
		t.Error("expected a network failure, not a filter block")
	}
}

func TestHTTPFetcher_RejectsNonNetworkURL(t *testing.T) {
	_, err := NewHTTPFetcher("").Fetch("file:///etc/passwd")
	if err == nil {
		t.Fatal("expected error for non-network URL")
	}
}

func TestRuleList(t *testing.T) {
	rl := ParseRuleList(`! comment
[Adblock Plus 2.0]
||ads.example.com^
/banner/
@@||ads.example.com/ok
example.org##.ad
`)
	if rl.Len() != 3 {
		t.Fatalf("expected 3 compiled rules, got %d", rl.Len())
	}

	if rl.Allow("http://ads.example.com/x.js") {
		t.Error("expected domain-anchored block")
	}
	if rl.Allow("http://sub.ads.example.com/x.js") {
		t.Error("expected subdomain block")
	}
	if rl.Allow("http://example.com/banner/img.png") {
		t.Error("expected substring block")
	}
	if !rl.Allow("http://ads.example.com/ok/x.js") {
		t.Error("expected exception to override the block")
	}
	if !rl.Allow("http://example.com/ads.example.com") {
		t.Error("expected domain rule to match the host only, not the path")
	}
	if !rl.Allow("http://clean.example.net/app.js") {
		t.Error("expected unrelated URL to pass")
	}
}

func TestRuleList_DomainAnchorWithPath(t *testing.T) {
	rl := ParseRuleList("||cdn.example.com/tracking")
	if rl.Allow("http://cdn.example.com/tracking/pixel.js") {
		t.Error("expected path-anchored rule to block its path")
	}
	if rl.Allow("http://a.cdn.example.com/tracking/pixel.js") {
		t.Error("expected path-anchored rule to cover subdomains")
	}
	if !rl.Allow("http://cdn.example.com/app.js") {
		t.Error("expected other paths on the host to pass")
	}
	if !rl.Allow("http://other.example.com/tracking/pixel.js") {
		t.Error("expected other hosts to pass")
	}
}

func TestFilteredFetcher_BlocksBeforeFetch(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	f := &FilteredFetcher{
		Fetcher: NewHTTPFetcher(""),
		Filter:  ParseRuleList("||127.0.0.1"),
	}
	_, err := f.Fetch(srv.URL + "/x")
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) || !unavailable.Blocked {
		t.Fatalf("expected a filter block, got %v", err)
	}
	if called {
		t.Error("expected the fetch to be suppressed entirely")
	}
}

func TestMediaDecoder(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatal(err)
	}

	d := NewMediaDecoder()
	m, err := d.Decode("http://example.com/a.png", buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Width != 3 || m.Height != 2 || m.Format != "png" {
		t.Errorf("unexpected media %dx%d %s", m.Width, m.Height, m.Format)
	}

	cached, ok := d.Get("http://example.com/a.png")
	if !ok || cached != m {
		t.Error("expected the decoded media to be cached")
	}

	if _, err := d.Decode("http://example.com/bad", []byte("not an image")); err == nil {
		t.Error("expected decode error for junk bytes")
	}
}
