// Package packsmith assembles multi-version modpack build specifications and
// drives a single external builder process against them.
//
// The package normalizes four upstream version sources (fabric, forge,
// neoforge and the vanilla game manifest) behind one release-query contract:
//
//	import (
//		"context"
//		"github.com/packsmith/packsmith"
//		_ "github.com/packsmith/packsmith/all"
//	)
//
//	c := packsmith.DefaultClient()
//	provider, err := packsmith.New(packsmith.FamilyFabric, "", c)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	releases, err := provider.ListReleases(context.Background(), "1.21.4")
//
// The server built on top of this lives in cmd/packsmith.
package packsmith

import (
	"github.com/packsmith/packsmith/client"
	"github.com/packsmith/packsmith/internal/core"
)

// Re-export types from internal/core
type (
	// Family identifies a mod-loader ecosystem or the vanilla baseline.
	Family = core.Family

	// Provider is the interface implemented by all loader version adapters.
	Provider = core.Provider

	// UnavailableError marks an upstream that could not be queried.
	UnavailableError = core.UnavailableError
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for upstream metadata APIs.
	Client = client.Client

	// Getter fetches and decodes upstream metadata documents.
	Getter = client.Getter

	// HTTPError represents a non-2xx response from an upstream.
	HTTPError = client.HTTPError
)

// Re-export constants
const (
	FamilyVanilla  = core.FamilyVanilla
	FamilyFabric   = core.FamilyFabric
	FamilyForge    = core.FamilyForge
	FamilyNeoForge = core.FamilyNeoForge
)

// Re-export errors
var (
	ErrUnavailable  = core.ErrUnavailable
	ErrUpstreamDown = client.ErrUpstreamDown
)

// New creates a provider for the given loader family.
// If baseURL is empty, the family's canonical upstream URL is used.
// Adapters must be imported to be registered; see the all subpackage.
func New(family Family, baseURL string, g Getter) (Provider, error) {
	return core.New(family, baseURL, g)
}

// DefaultClient returns a client with sensible defaults:
// - 10s timeout
// - 3 retries with exponential backoff
// - retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// Option configures a Client.
type Option = client.Option

// WithTimeout sets the per-request timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// SupportedFamilies returns all registered loader families.
// Note: adapters must be imported to be registered.
func SupportedFamilies() []Family {
	return core.SupportedFamilies()
}

// DefaultURL returns the canonical upstream metadata URL for a family.
func DefaultURL(family Family) string {
	return core.DefaultURL(family)
}

// ParseFamily resolves a loader family name case-insensitively.
func ParseFamily(s string) (Family, bool) {
	return core.ParseFamily(s)
}
