// Package vanilla provides a version adapter for the canonical game version
// manifest, which lists every official game version with its release channel.
package vanilla

import (
	"context"
	"strings"

	"github.com/packsmith/packsmith/internal/core"
)

const DefaultURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

const family = core.FamilyVanilla

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

type manifest struct {
	Versions []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"versions"`
}

// Versions returns game version ids in manifest order, optionally filtered
// by release channel ("release", "snapshot", ...). An empty versionType
// returns everything.
func (p *Provider) Versions(ctx context.Context, versionType string) ([]string, error) {
	var m manifest
	if err := p.getter.GetJSON(ctx, p.manifestURL, &m); err != nil {
		return nil, core.Unavailable("vanilla", err)
	}

	out := make([]string, 0, len(m.Versions))
	for _, v := range m.Versions {
		if v.ID == "" {
			continue
		}
		if versionType == "" || strings.EqualFold(v.Type, versionType) {
			out = append(out, v.ID)
		}
	}
	return out, nil
}

func (p *Provider) HasRelease(ctx context.Context, gameVersion string) (bool, error) {
	versions, err := p.Versions(ctx, "")
	if err != nil {
		return false, err
	}
	for _, v := range versions {
		if v == gameVersion {
			return true, nil
		}
	}
	return false, nil
}

// ListReleases reports the game version itself: running without a loader
// has exactly one "release", the game version.
func (p *Provider) ListReleases(ctx context.Context, gameVersion string) ([]string, error) {
	ok, err := p.HasRelease(ctx, gameVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []string{gameVersion}, nil
}
