// Package forge provides a version adapter for the Forge maven metadata.
package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/packsmith/packsmith/internal/core"
)

const DefaultURL = "https://files.minecraftforge.net/net/minecraftforge/forge/maven-metadata.json"

const family = core.FamilyForge

func init() {
	core.Register(family, DefaultURL, func(baseURL string, getter core.Getter) core.Provider {
		return New(baseURL, getter)
	})
}

type Provider struct {
	metadataURL string
	getter      core.Getter
}

func New(metadataURL string, getter core.Getter) *Provider {
	if metadataURL == "" {
		metadataURL = DefaultURL
	}
	return &Provider{
		metadataURL: metadataURL,
		getter:      getter,
	}
}

func (p *Provider) Family() core.Family {
	return family
}

// fetch retrieves the shared metadata document: one JSON map keyed by game
// version, each value the full "<game>-<build>" version strings.
func (p *Provider) fetch(ctx context.Context) (map[string][]string, error) {
	var metadata map[string][]string
	if err := p.getter.GetJSON(ctx, p.metadataURL, &metadata); err != nil {
		return nil, core.Unavailable("forge", err)
	}
	return metadata, nil
}

func (p *Provider) HasRelease(ctx context.Context, gameVersion string) (bool, error) {
	metadata, err := p.fetch(ctx)
	if err != nil {
		return false, err
	}
	return len(metadata[gameVersion]) > 0, nil
}

// ListReleases returns build identifiers for the game version, descending.
// Entries carrying the "<gameVersion>-" prefix are stripped to the bare
// build; anything else is kept verbatim.
func (p *Provider) ListReleases(ctx context.Context, gameVersion string) ([]string, error) {
	metadata, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("%s-", gameVersion)
	seen := make(map[string]struct{})
	out := make([]string, 0, len(metadata[gameVersion]))
	for _, full := range metadata[gameVersion] {
		build := full
		if strings.HasPrefix(full, prefix) {
			build = strings.TrimPrefix(full, prefix)
		}
		if _, ok := seen[build]; ok {
			continue
		}
		seen[build] = struct{}{}
		out = append(out, build)
	}

	core.SortReleasesDesc(out)
	return out, nil
}
