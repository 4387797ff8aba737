package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ManifestName is the file the artifact index is stored under, inside the
// output directory.
const ManifestName = "manifest.json"

// Manifest is the JSON index of generated artifacts. It is safe for
// concurrent use; the preview server records new artifacts while list
// requests are being served.
type Manifest struct {
	path string

	mu   sync.Mutex
	arts []Artifact
}

type manifestFile struct {
	Artifacts []Artifact `json:"artifacts"`
}

// OpenManifest loads the manifest in dir, or starts an empty one when the
// file does not exist yet.
func OpenManifest(dir string) (*Manifest, error) {
	m := &Manifest{path: filepath.Join(dir, ManifestName)}

	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading manifest: %w", err)
		}
		return m, nil
	}

	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", m.path, err)
	}
	m.arts = file.Artifacts
	return m, nil
}

// Put inserts art, replacing any previous entry with the same name, and
// saves the manifest to disk.
func (m *Manifest) Put(art Artifact) error {
	// Only metadata goes into the index.
	art.img = nil

	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := false
	for i := range m.arts {
		if m.arts[i].Name == art.Name {
			m.arts[i] = art
			replaced = true
			break
		}
	}
	if !replaced {
		m.arts = append(m.arts, art)
	}
	return m.save()
}

// Find returns the artifact named name.
func (m *Manifest) Find(name string) (Artifact, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.arts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// Artifacts returns a copy of all entries in insertion order.
func (m *Manifest) Artifacts() []Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Artifact, len(m.arts))
	copy(out, m.arts)
	return out
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.arts)
}

// save writes the manifest file. Callers must hold mu.
func (m *Manifest) save() error {
	data, err := json.MarshalIndent(manifestFile{Artifacts: m.arts}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(m.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
