package core

import (
	"context"
	"slices"
	"testing"
)

type stubProvider struct {
	family Family
}

func (s *stubProvider) Family() Family { return s.family }
func (s *stubProvider) HasRelease(ctx context.Context, gameVersion string) (bool, error) {
	return false, nil
}
func (s *stubProvider) ListReleases(ctx context.Context, gameVersion string) ([]string, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	const fam = Family("testfam")

	var gotURL string
	Register(fam, "https://example.test/meta", func(baseURL string, getter Getter) Provider {
		gotURL = baseURL
		return &stubProvider{family: fam}
	})

	p, err := New(fam, "", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.Family() != fam {
		t.Errorf("Family() = %q, want %q", p.Family(), fam)
	}
	if gotURL != "https://example.test/meta" {
		t.Errorf("baseURL = %q, want default URL", gotURL)
	}

	if _, err = New(fam, "https://mirror.test", nil); err != nil {
		t.Fatalf("New with explicit URL failed: %v", err)
	}
	if gotURL != "https://mirror.test" {
		t.Errorf("baseURL = %q, want %q", gotURL, "https://mirror.test")
	}

	if got := DefaultURL(fam); got != "https://example.test/meta" {
		t.Errorf("DefaultURL = %q, want %q", got, "https://example.test/meta")
	}

	if !slices.Contains(SupportedFamilies(), fam) {
		t.Errorf("SupportedFamilies() = %v, missing %q", SupportedFamilies(), fam)
	}
}

func TestNewUnknownFamily(t *testing.T) {
	if _, err := New(Family("nope"), "", nil); err == nil {
		t.Fatal("New succeeded for unregistered family, want error")
	}
}
