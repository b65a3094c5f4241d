// Package neoforge provides a version adapter for the NeoForge maven manifest.
package neoforge

import (
	"context"
	"fmt"
	"strings"

	"github.com/packsmith/packsmith/internal/core"
)

const DefaultURL = "https://maven.neoforged.net/releases/net/neoforged/neoforge/maven-metadata.xml"

const family = core.FamilyNeoForge

func init() {
	core.Register(family, DefaultURL, func(baseURL string, getter core.Getter) core.Provider {
		return New(baseURL, getter)
	})
}

type Provider struct {
	manifestURL string
	getter      core.Getter
}

func New(manifestURL string, getter core.Getter) *Provider {
	if manifestURL == "" {
		manifestURL = DefaultURL
	}
	return &Provider{
		manifestURL: manifestURL,
		getter:      getter,
	}
}

func (p *Provider) Family() core.Family {
	return family
}

type mavenMetadata struct {
	Versioning struct {
		Versions struct {
			Version []string `xml:"version"`
		} `xml:"versions"`
	} `xml:"versioning"`
}

// fetch retrieves the shared XML manifest listing every NeoForge release.
func (p *Provider) fetch(ctx context.Context) ([]string, error) {
	var metadata mavenMetadata
	if err := p.getter.GetXML(ctx, p.manifestURL, &metadata); err != nil {
		return nil, core.Unavailable("neoforge", err)
	}

	versions := metadata.Versioning.Versions.Version
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

// releasePrefix derives the NeoForge version prefix for a game version.
// "1.20.4" maps to "20.4." and "1.21" to "21.0."; versions with fewer than
// two components have no NeoForge line at all.
func releasePrefix(gameVersion string) string {
	parts := strings.Split(gameVersion, ".")
	switch {
	case len(parts) >= 3:
		return fmt.Sprintf("%s.%s.", parts[1], parts[2])
	case len(parts) == 2:
		return fmt.Sprintf("%s.0.", parts[1])
	}
	return ""
}

func (p *Provider) HasRelease(ctx context.Context, gameVersion string) (bool, error) {
	prefix := releasePrefix(gameVersion)
	if prefix == "" {
		return false, nil
	}

	all, err := p.fetch(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range all {
		if strings.HasPrefix(v, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// ListReleases filters the manifest to the game version's prefix, splits the
// matches into stable and beta channels, sorts each descending, and returns
// stable releases first.
func (p *Provider) ListReleases(ctx context.Context, gameVersion string) ([]string, error) {
	prefix := releasePrefix(gameVersion)
	if prefix == "" {
		return nil, nil
	}

	all, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var stable, beta []string
	for _, v := range all {
		if !strings.HasPrefix(v, prefix) {
			continue
		}
		if strings.Contains(v, "-beta") {
			beta = append(beta, v)
		} else {
			stable = append(stable, v)
		}
	}

	core.SortReleasesDesc(stable)
	core.SortReleasesDesc(beta)
	return append(stable, beta...), nil
}
