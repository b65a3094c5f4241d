// Package validate checks a build specification before a build may start.
package validate

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/packsmith/packsmith/internal/core"
	"github.com/packsmith/packsmith/internal/store"
)

// FieldError reports a malformed or inconsistent spec field. It is distinct
// from an upstream resolution failure, which surfaces as a
// core.UnavailableError instead.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErrorf(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ResolutionService is the subset of the version resolver the validator
// needs to cross-check spec entries.
type ResolutionService interface {
	VanillaVersions(ctx context.Context, versionType string) ([]string, error)
	LoaderFamilies(ctx context.Context, gameVersion string) ([]core.Family, error)
	LoaderReleases(ctx context.Context, gameVersion string, family core.Family) ([]string, error)
}

// Validator cross-checks build specs against the resolution service.
type Validator struct {
	resolver ResolutionService
}

func New(resolver ResolutionService) *Validator {
	return &Validator{resolver: resolver}
}

// Validate runs the structural and resolution checks in order, failing on
// the first violation. A *FieldError means the spec itself is wrong; a
// core.UnavailableError means an upstream could not be consulted and the
// spec's validity is unknown.
func (v *Validator) Validate(ctx context.Context, spec *store.BuildSpec) error {
	if spec == nil {
		return fieldErrorf("", "spec document is missing")
	}

	urlFields := []struct {
		name  string
		value string
	}{
		{"download_server_base", spec.DownloadServerBase},
		{"resources_url_base", spec.ResourcesURLBase},
		{"version_manifest_url", spec.VersionManifestURL},
	}
	for _, f := range urlFields {
		if strings.TrimSpace(f.value) == "" {
			return fieldErrorf(f.name, "field is required")
		}
	}
	if len(spec.Versions) == 0 {
		return fieldErrorf("versions", "at least one version entry is required")
	}

	for _, f := range urlFields {
		if err := checkURL(f.name, f.value); err != nil {
			return err
		}
	}

	for i := range spec.Versions {
		prefix := fmt.Sprintf("versions[%d].", i)
		if err := v.validateEntry(ctx, prefix, &spec.Versions[i]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEntry checks a single version entry against the resolution
// service, outside the context of a full spec document.
func (v *Validator) ValidateEntry(ctx context.Context, entry *store.VersionEntry) error {
	return v.validateEntry(ctx, "", entry)
}

func checkURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fieldErrorf(field, "not a valid URL: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fieldErrorf(field, "URL scheme must be http or https")
	}
	if parsed.Host == "" {
		return fieldErrorf(field, "URL host is required")
	}
	return nil
}

func (v *Validator) validateEntry(ctx context.Context, prefix string, entry *store.VersionEntry) error {
	path := func(name string) string {
		return prefix + name
	}

	stringFields := []struct {
		name  string
		value string
	}{
		{"name", entry.Name},
		{"minecraft_version", entry.MinecraftVersion},
		{"loader_name", entry.LoaderName},
		{"loader_version", entry.LoaderVersion},
		{"include_from", entry.IncludeFrom},
	}
	for _, f := range stringFields {
		if strings.TrimSpace(f.value) == "" {
			return fieldErrorf(path(f.name), "field is required")
		}
	}

	vanillaVersions, err := v.resolver.VanillaVersions(ctx, "")
	if err != nil {
		return err
	}
	if !slices.Contains(vanillaVersions, entry.MinecraftVersion) {
		return fieldErrorf(path("minecraft_version"), "unknown game version %q", entry.MinecraftVersion)
	}

	family, ok := core.ParseFamily(entry.LoaderName)
	if !ok {
		return fieldErrorf(path("loader_name"), "unknown loader %q, expected one of %v",
			entry.LoaderName, core.Families())
	}

	families, err := v.resolver.LoaderFamilies(ctx, entry.MinecraftVersion)
	if err != nil {
		return err
	}
	if !slices.Contains(families, family) {
		return fieldErrorf(path("loader_name"), "loader %s is not available for game version %s",
			family, entry.MinecraftVersion)
	}

	releases, err := v.resolver.LoaderReleases(ctx, entry.MinecraftVersion, family)
	if err != nil {
		return err
	}
	if !slices.Contains(releases, entry.LoaderVersion) {
		return fieldErrorf(path("loader_version"), "release %q not found for %s on %s",
			entry.LoaderVersion, family, entry.MinecraftVersion)
	}
	return nil
}
