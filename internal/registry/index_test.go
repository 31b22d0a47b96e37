package registry

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func indexServer(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		w.Header().Set("ETag", `"e1"`)
		fmt.Fprintln(w, `{"name":"abcd","vers":"1.0.0"}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestIndexCachesUntilInvalidate(t *testing.T) {
	requests := 0
	var lastValidator string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		lastValidator = r.Header.Get("If-None-Match")
		w.Header().Set("ETag", `"e1"`)
		fmt.Fprintln(w, `{"name":"abcd","vers":"1.0.0"}`)
	}))
	defer server.Close()
	index := NewIndex()
	index.BaseURL = server.URL

	for i := 0; i < 3; i++ {
		published, err := index.HasVersion("", "abcd", "1.0.0")
		if err != nil {
			t.Fatalf("HasVersion returned error: %v", err)
		}
		if published == nil || !*published {
			t.Fatalf("HasVersion = %v, want true", published)
		}
	}
	if requests != 1 {
		t.Fatalf("server saw %d requests before Invalidate, want 1", requests)
	}

	index.Invalidate("", "abcd")
	if _, err := index.HasVersion("", "abcd", "1.0.0"); err != nil {
		t.Fatalf("HasVersion after Invalidate returned error: %v", err)
	}
	if requests != 2 {
		t.Fatalf("server saw %d requests after Invalidate, want 2", requests)
	}
	// The refetch revalidates with the etag from the first response.
	if lastValidator != `"e1"` {
		t.Fatalf("refetch If-None-Match = %q, want %q", lastValidator, `"e1"`)
	}
}

func TestIndexHasVersionDistinguishesUnpublished(t *testing.T) {
	requests := 0
	server := indexServer(t, &requests)
	index := NewIndex()
	index.BaseURL = server.URL

	published, err := index.HasVersion("", "abcd", "2.0.0")
	if err != nil {
		t.Fatalf("HasVersion returned error: %v", err)
	}
	if published == nil || *published {
		t.Fatalf("HasVersion = %v, want false (known unpublished)", published)
	}
}

func TestIndexNonDefaultRegistryIsUnknown(t *testing.T) {
	requests := 0
	server := indexServer(t, &requests)
	index := NewIndex()
	index.BaseURL = server.URL

	published, err := index.HasVersion("alt", "abcd", "1.0.0")
	if err != nil {
		t.Fatalf("HasVersion returned error: %v", err)
	}
	if published != nil {
		t.Fatalf("HasVersion = %v, want nil for a non-default registry", *published)
	}
	known, err := index.HasPackage("alt", "abcd")
	if err != nil {
		t.Fatalf("HasPackage returned error: %v", err)
	}
	if known {
		t.Fatal("HasPackage = true for a non-default registry")
	}
	if requests != 0 {
		t.Fatalf("server saw %d requests, want 0", requests)
	}

	// Invalidate of a non-default registry is a no-op.
	index.Invalidate("alt", "abcd")
}

func TestIndexHasPackage(t *testing.T) {
	requests := 0
	server := indexServer(t, &requests)
	index := NewIndex()
	index.BaseURL = server.URL

	known, err := index.HasPackage("", "abcd")
	if err != nil {
		t.Fatalf("HasPackage returned error: %v", err)
	}
	if !known {
		t.Fatal("HasPackage = false for a known package")
	}
}

func TestIndexCachesAbsence(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	index := NewIndex()
	index.BaseURL = server.URL

	for i := 0; i < 2; i++ {
		known, err := index.HasPackage("", "ghost")
		if err != nil {
			t.Fatalf("HasPackage returned error: %v", err)
		}
		if known {
			t.Fatal("HasPackage = true for an absent package")
		}
	}
	if requests != 1 {
		t.Fatalf("server saw %d requests, want 1 (absence is cached)", requests)
	}
}
