// Package core provides shared types and the loader adapter registry.
package core

import (
	"context"
	"strings"

	"github.com/packsmith/packsmith/client"
)

// Family identifies a mod-loader ecosystem, or the no-loader vanilla baseline.
type Family string

const (
	FamilyVanilla  Family = "vanilla"
	FamilyFabric   Family = "fabric"
	FamilyForge    Family = "forge"
	FamilyNeoForge Family = "neoforge"
)

// Families returns the closed set of loader families, vanilla first.
func Families() []Family {
	return []Family{FamilyVanilla, FamilyFabric, FamilyForge, FamilyNeoForge}
}

// ParseFamily resolves a loader family name case-insensitively.
func ParseFamily(s string) (Family, bool) {
	switch Family(strings.ToLower(strings.TrimSpace(s))) {
	case FamilyVanilla:
		return FamilyVanilla, true
	case FamilyFabric:
		return FamilyFabric, true
	case FamilyForge:
		return FamilyForge, true
	case FamilyNeoForge:
		return FamilyNeoForge, true
	}
	return "", false
}

// Getter is the upstream HTTP contract adapters fetch through.
type Getter = client.Getter

// Provider is the interface implemented by all loader version adapters.
type Provider interface {
	// Family returns the loader family this adapter serves.
	Family() Family

	// HasRelease reports whether any release exists for the game version.
	// A malformed or unknown game version yields (false, nil), not an error.
	HasRelease(ctx context.Context, gameVersion string) (bool, error)

	// ListReleases returns release identifiers for the game version,
	// most preferred first. Unknown versions yield an empty list.
	ListReleases(ctx context.Context, gameVersion string) ([]string, error)
}
