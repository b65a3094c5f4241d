package vanilla

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/packsmith/packsmith/client"
	"github.com/packsmith/packsmith/internal/core"
)

func testGetter() core.Getter {
	return client.NewClient(client.WithMaxRetries(0), client.WithBaseDelay(time.Millisecond))
}

const manifestJSON = `{
	"versions": [
		{"id": "25w03a", "type": "snapshot"},
		{"id": "1.21.4", "type": "release"},
		{"id": "1.21.3", "type": "release"},
		{"id": "1.21.2-rc1", "type": "snapshot"}
	]
}`

func manifestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(manifestJSON))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestVersions(t *testing.T) {
	p := New(manifestServer(t).URL, testGetter())
	versions, err := p.Versions(context.Background(), "")
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}

	// Manifest order, not re-sorted.
	want := []string{"25w03a", "1.21.4", "1.21.3", "1.21.2-rc1"}
	if !slices.Equal(versions, want) {
		t.Errorf("Versions = %v, want %v", versions, want)
	}
}

func TestVersionsTypeFilter(t *testing.T) {
	p := New(manifestServer(t).URL, testGetter())

	releases, err := p.Versions(context.Background(), "release")
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	want := []string{"1.21.4", "1.21.3"}
	if !slices.Equal(releases, want) {
		t.Errorf("Versions(release) = %v, want %v", releases, want)
	}

	// Filter is case-insensitive.
	releases, err = p.Versions(context.Background(), "Release")
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	if !slices.Equal(releases, want) {
		t.Errorf("Versions(Release) = %v, want %v", releases, want)
	}

	none, err := p.Versions(context.Background(), "old_beta")
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Versions(old_beta) = %v, want empty", none)
	}
}

func TestHasRelease(t *testing.T) {
	p := New(manifestServer(t).URL, testGetter())

	ok, err := p.HasRelease(context.Background(), "1.21.4")
	if err != nil || !ok {
		t.Errorf("HasRelease(1.21.4) = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = p.HasRelease(context.Background(), "2.0")
	if err != nil || ok {
		t.Errorf("HasRelease(2.0) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestListReleases(t *testing.T) {
	p := New(manifestServer(t).URL, testGetter())

	releases, err := p.ListReleases(context.Background(), "1.21.4")
	if err != nil {
		t.Fatalf("ListReleases failed: %v", err)
	}
	if !slices.Equal(releases, []string{"1.21.4"}) {
		t.Errorf("ListReleases = %v, want [1.21.4]", releases)
	}

	releases, err = p.ListReleases(context.Background(), "2.0")
	if err != nil {
		t.Fatalf("ListReleases failed: %v", err)
	}
	if len(releases) != 0 {
		t.Errorf("ListReleases(2.0) = %v, want empty", releases)
	}
}

func TestUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := New(server.URL, testGetter())
	_, err := p.Versions(context.Background(), "")
	if !errors.Is(err, core.ErrUnavailable) {
		t.Errorf("Versions = %v, want ErrUnavailable", err)
	}
}
