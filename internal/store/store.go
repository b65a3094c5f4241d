// Package store persists the build specification document as one JSON file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

var (
	// ErrEntryExists is returned when creating a version entry whose name
	// is already taken.
	ErrEntryExists = errors.New("version entry already exists")

	// ErrEntryNotFound is returned when a named version entry does not exist.
	ErrEntryNotFound = errors.New("version entry not found")
)

// VersionEntry names one build instance inside the spec.
type VersionEntry struct {
	Name             string `json:"name"`
	MinecraftVersion string `json:"minecraft_version"`
	LoaderName       string `json:"loader_name"`
	LoaderVersion    string `json:"loader_version"`
	IncludeFrom      string `json:"include_from"`
}

// BuildSpec is the document handed to the external builder.
type BuildSpec struct {
	DownloadServerBase string         `json:"download_server_base"`
	ResourcesURLBase   string         `json:"resources_url_base"`
	VersionManifestURL string         `json:"version_manifest_url"`
	Versions           []VersionEntry `json:"versions"`
}

// FindVersion returns the entry with the given name, or nil.
func (s *BuildSpec) FindVersion(name string) *VersionEntry {
	for i := range s.Versions {
		if s.Versions[i].Name == name {
			return &s.Versions[i]
		}
	}
	return nil
}

// Store guards the spec file with a process-wide read/write lock. All
// mutation goes through Update so concurrent writers serialize on the file.
type Store struct {
	path string
	mu   sync.RWMutex
}

// New opens the store, creating the file with an empty spec if missing.
func New(path string, initial *BuildSpec) (*Store, error) {
	if path == "" {
		return nil, errors.New("spec path is required")
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if initial == nil {
			initial = &BuildSpec{}
		}
		if err := writeFile(path, initial); err != nil {
			return nil, err
		}
	}
	return &Store{path: path}, nil
}

// Get returns the current spec document.
func (s *Store) Get() (*BuildSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readFile(s.path)
}

// Update applies mutator to the spec under the write lock and persists the
// result. If mutator returns an error nothing is written.
func (s *Store) Update(mutator func(*BuildSpec) error) (*BuildSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, err := readFile(s.path)
	if err != nil {
		return nil, err
	}
	if err := mutator(spec); err != nil {
		return nil, err
	}
	if err := writeFile(s.path, spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// AddVersion appends a new entry; the name must be unused.
func (s *Store) AddVersion(entry VersionEntry) (*BuildSpec, error) {
	return s.Update(func(spec *BuildSpec) error {
		if spec.FindVersion(entry.Name) != nil {
			return ErrEntryExists
		}
		spec.Versions = append(spec.Versions, entry)
		return nil
	})
}

// UpdateVersion replaces the entry with the given name.
func (s *Store) UpdateVersion(name string, entry VersionEntry) (*BuildSpec, error) {
	return s.Update(func(spec *BuildSpec) error {
		for i := range spec.Versions {
			if spec.Versions[i].Name == name {
				if entry.Name != name && spec.FindVersion(entry.Name) != nil {
					return ErrEntryExists
				}
				spec.Versions[i] = entry
				return nil
			}
		}
		return ErrEntryNotFound
	})
}

// DeleteVersion removes the entry with the given name.
func (s *Store) DeleteVersion(name string) (*BuildSpec, error) {
	return s.Update(func(spec *BuildSpec) error {
		for i := range spec.Versions {
			if spec.Versions[i].Name == name {
				spec.Versions = append(spec.Versions[:i], spec.Versions[i+1:]...)
				return nil
			}
		}
		return ErrEntryNotFound
	})
}

func readFile(path string) (*BuildSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec: %w", err)
	}
	spec := &BuildSpec{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, spec); err != nil {
			return nil, fmt.Errorf("decode spec: %w", err)
		}
	}
	if spec.Versions == nil {
		spec.Versions = []VersionEntry{}
	}
	return spec, nil
}

func writeFile(path string, spec *BuildSpec) error {
	if spec.Versions == nil {
		spec.Versions = []VersionEntry{}
	}
	raw, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode spec: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write spec: %w", err)
	}
	return nil
}
