// Package versions aggregates the loader family adapters into one
// resolution service with memoized lookups.
package versions

import (
	"context"
	"slices"
	"time"

	"github.com/facebookgo/clock"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/packsmith/packsmith/client"
	"github.com/packsmith/packsmith/internal/core"
	"github.com/packsmith/packsmith/internal/fabric"
	"github.com/packsmith/packsmith/internal/forge"
	"github.com/packsmith/packsmith/internal/neoforge"
	"github.com/packsmith/packsmith/internal/vanilla"
)

const (
	defaultTTL       = 5 * time.Minute
	defaultCacheSize = 256
)

// Resolver answers which loader families and releases exist for a game
// version, caching upstream answers for a short operating window.
type Resolver struct {
	vanilla   *vanilla.Provider
	providers map[core.Family]core.Provider

	cache  *memoCache
	group  singleflight.Group
	logger hclog.Logger

	clk       clock.Clock
	ttl       time.Duration
	cacheSize int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock injects the clock used for cache expiry.
func WithClock(clk clock.Clock) ResolverOption {
	return func(r *Resolver) {
		r.clk = clk
	}
}

// WithTTL sets how long resolution results are reused. Zero disables caching.
func WithTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.ttl = ttl
	}
}

// WithCacheSize bounds the number of cached argument tuples.
func WithCacheSize(n int) ResolverOption {
	return func(r *Resolver) {
		r.cacheSize = n
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(l hclog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver builds a resolver over the four canonical upstream sources.
// The loader family set is closed: adding a family means adding an adapter
// package and one entry here.
func NewResolver(g client.Getter, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		vanilla: vanilla.New("", g),
		providers: map[core.Family]core.Provider{
			core.FamilyFabric:   fabric.New("", g),
			core.FamilyForge:    forge.New("", g),
			core.FamilyNeoForge: neoforge.New("", g),
		},
		logger:    hclog.NewNullLogger(),
		clk:       clock.New(),
		ttl:       defaultTTL,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = newMemoCache(r.clk, r.ttl, r.cacheSize)
	return r
}

// VanillaVersions returns game version ids, optionally filtered by release
// channel, in manifest order.
func (r *Resolver) VanillaVersions(ctx context.Context, versionType string) ([]string, error) {
	return r.cached("vanilla\x00"+versionType, func() ([]string, error) {
		return r.vanilla.Versions(ctx, versionType)
	})
}

// LoaderFamilies returns the loader families available for a game version,
// vanilla first. Families are probed concurrently; any probe failure makes
// the whole answer unavailable rather than silently incomplete.
func (r *Resolver) LoaderFamilies(ctx context.Context, gameVersion string) ([]core.Family, error) {
	names, err := r.cached("families\x00"+gameVersion, func() ([]string, error) {
		return r.probeFamilies(ctx, gameVersion)
	})
	if err != nil {
		return nil, err
	}

	families := make([]core.Family, len(names))
	for i, n := range names {
		families[i] = core.Family(n)
	}
	return families, nil
}

func (r *Resolver) probeFamilies(ctx context.Context, gameVersion string) ([]string, error) {
	ordered := []core.Family{core.FamilyFabric, core.FamilyForge, core.FamilyNeoForge}
	available := make([]bool, len(ordered))

	hasVanilla := false
	eg, probeCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		vanillaVersions, err := r.VanillaVersions(probeCtx, "")
		if err != nil {
			return err
		}
		hasVanilla = slices.Contains(vanillaVersions, gameVersion)
		return nil
	})
	for i, family := range ordered {
		i, family := i, family
		provider := r.providers[family]
		eg.Go(func() error {
			ok, err := provider.HasRelease(probeCtx, gameVersion)
			if err != nil {
				r.logger.Warn("loader probe failed", "family", family, "game_version", gameVersion, "error", err)
				return err
			}
			available[i] = ok
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(ordered)+1)
	if hasVanilla {
		out = append(out, string(core.FamilyVanilla))
	}
	for i, family := range ordered {
		if available[i] {
			out = append(out, string(family))
		}
	}
	return out, nil
}

// LoaderReleases returns the ordered release list for a (game version,
// family) pair. The vanilla family is the game version itself; an unknown
// family resolves to an empty list.
func (r *Resolver) LoaderReleases(ctx context.Context, gameVersion string, family core.Family) ([]string, error) {
	if family == core.FamilyVanilla {
		return []string{gameVersion}, nil
	}

	provider, ok := r.providers[family]
	if !ok {
		return []string{}, nil
	}

	return r.cached("releases\x00"+gameVersion+"\x00"+string(family), func() ([]string, error) {
		return provider.ListReleases(ctx, gameVersion)
	})
}

// cached memoizes fetch per key, collapsing concurrent misses into one
// upstream call. Errors are never cached.
func (r *Resolver) cached(key string, fetch func() ([]string, error)) ([]string, error) {
	if v, ok := r.cache.get(key); ok {
		return v, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		if v, ok := r.cache.get(key); ok {
			return v, nil
		}
		out, err := fetch()
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = []string{}
		}
		r.cache.put(key, out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}
