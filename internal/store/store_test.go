package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "spec.json"), nil)
	require.NoError(t, err)
	return s
}

func entry(name string) VersionEntry {
	return VersionEntry{
		Name:             name,
		MinecraftVersion: "1.21.4",
		LoaderName:       "fabric",
		LoaderVersion:    "0.16.9",
		IncludeFrom:      "common",
	}
}

func TestNewCreatesEmptySpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")
	s, err := New(path, nil)
	require.NoError(t, err)

	spec, err := s.Get()
	require.NoError(t, err)
	require.Empty(t, spec.DownloadServerBase)
	require.NotNil(t, spec.Versions)
	require.Empty(t, spec.Versions)

	// The file itself is valid JSON with an empty versions array.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "versions")
}

func TestNewKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"download_server_base": "https://dl.example.com",
		"versions": [{"name": "main"}]
	}`), 0o644))

	s, err := New(path, nil)
	require.NoError(t, err)

	spec, err := s.Get()
	require.NoError(t, err)
	require.Equal(t, "https://dl.example.com", spec.DownloadServerBase)
	require.Len(t, spec.Versions, 1)
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New("", nil)
	require.Error(t, err)
}

func TestUpdatePersists(t *testing.T) {
	s := testStore(t)

	spec, err := s.Update(func(spec *BuildSpec) error {
		spec.DownloadServerBase = "https://dl.example.com"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "https://dl.example.com", spec.DownloadServerBase)

	reread, err := s.Get()
	require.NoError(t, err)
	require.Equal(t, "https://dl.example.com", reread.DownloadServerBase)
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	s := testStore(t)
	_, err := s.AddVersion(entry("main"))
	require.NoError(t, err)

	_, err = s.Update(func(spec *BuildSpec) error {
		spec.Versions = nil
		return ErrEntryNotFound
	})
	require.Error(t, err)

	spec, err := s.Get()
	require.NoError(t, err)
	require.Len(t, spec.Versions, 1, "failed mutation must not be persisted")
}

func TestAddVersion(t *testing.T) {
	s := testStore(t)

	spec, err := s.AddVersion(entry("main"))
	require.NoError(t, err)
	require.Len(t, spec.Versions, 1)

	_, err = s.AddVersion(entry("main"))
	require.ErrorIs(t, err, ErrEntryExists)
}

func TestUpdateVersion(t *testing.T) {
	s := testStore(t)
	_, err := s.AddVersion(entry("main"))
	require.NoError(t, err)

	updated := entry("main")
	updated.LoaderVersion = "0.16.10"
	spec, err := s.UpdateVersion("main", updated)
	require.NoError(t, err)
	require.Equal(t, "0.16.10", spec.Versions[0].LoaderVersion)

	_, err = s.UpdateVersion("missing", entry("missing"))
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestUpdateVersionRename(t *testing.T) {
	s := testStore(t)
	_, err := s.AddVersion(entry("a"))
	require.NoError(t, err)
	_, err = s.AddVersion(entry("b"))
	require.NoError(t, err)

	// Renaming onto an existing name is a conflict.
	_, err = s.UpdateVersion("a", entry("b"))
	require.ErrorIs(t, err, ErrEntryExists)

	spec, err := s.UpdateVersion("a", entry("c"))
	require.NoError(t, err)
	require.NotNil(t, spec.FindVersion("c"))
	require.Nil(t, spec.FindVersion("a"))
}

func TestDeleteVersion(t *testing.T) {
	s := testStore(t)
	_, err := s.AddVersion(entry("main"))
	require.NoError(t, err)

	spec, err := s.DeleteVersion("main")
	require.NoError(t, err)
	require.Empty(t, spec.Versions)

	_, err = s.DeleteVersion("main")
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestFindVersion(t *testing.T) {
	spec := &BuildSpec{Versions: []VersionEntry{entry("a"), entry("b")}}
	require.NotNil(t, spec.FindVersion("b"))
	require.Nil(t, spec.FindVersion("z"))
}
