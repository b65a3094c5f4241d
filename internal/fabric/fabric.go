// Package fabric provides a version adapter for the Fabric loader metadata API.
package fabric

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/packsmith/packsmith/client"
	"github.com/packsmith/packsmith/internal/core"
)

const DefaultURL = "https://meta.fabricmc.net"

const family = core.FamilyFabric

func init() {
	core.Register(family, DefaultURL, func(baseURL string, getter core.Getter) core.Provider {
		return New(baseURL, getter)
	})
}

type Provider struct {
	baseURL string
	getter  core.Getter
}

func New(baseURL string, getter core.Getter) *Provider {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Provider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		getter:  getter,
	}
}

func (p *Provider) Family() core.Family {
	return family
}

type loaderEntry struct {
	Loader struct {
		Version string `json:"version"`
	} `json:"loader"`
}

// fetch retrieves the loader list for a game version. The meta API answers
// 400 for malformed versions and 404 for unknown ones; both mean "no
// releases", not a failure.
func (p *Provider) fetch(ctx context.Context, gameVersion string) ([]loaderEntry, error) {
	url := fmt.Sprintf("%s/v2/versions/loader/%s", p.baseURL, gameVersion)

	var entries []loaderEntry
	if err := p.getter.GetJSON(ctx, url, &entries); err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) &&
			(httpErr.StatusCode == http.StatusNotFound || httpErr.StatusCode == http.StatusBadRequest) {
			return nil, nil
		}
		return nil, core.Unavailable("fabric", err)
	}
	return entries, nil
}

func (p *Provider) HasRelease(ctx context.Context, gameVersion string) (bool, error) {
	entries, err := p.fetch(ctx, gameVersion)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// ListReleases returns loader versions in upstream order, deduplicated
// keeping the first occurrence. The meta API already orders newest first.
func (p *Provider) ListReleases(ctx context.Context, gameVersion string) ([]string, error) {
	entries, err := p.fetch(ctx, gameVersion)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		v := entry.Loader.Version
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
