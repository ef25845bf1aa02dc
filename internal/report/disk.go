// Package report writes the artifacts of a run to disk: one file per
// encoded item and a JSON manifest describing every item.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/deixis/glyphrun/internal/workflow"
	"github.com/gabriel-vasile/mimetype"
)

// ManifestFile is the name of the manifest written next to the artifacts.
const ManifestFile = "manifest.json"

// Manifest describes a saved run.
type Manifest struct {
	ID        string  `json:"id"`
	Dir       string  `json:"dir"`
	Items     []Entry `json:"items"`
	Stdout    string  `json:"stdout,omitempty"`
	Truncated bool    `json:"truncated,omitempty"`
}

// Entry describes one item of a run. Encoded items point at a file,
// the others carry their text.
type Entry struct {
	Kind     string `json:"kind"`
	MIMEType string `json:"mime_type,omitempty"`
	File     string `json:"file,omitempty"`
	Text     string `json:"text,omitempty"`
}

// DiskStore writes runs below a root directory, one subdirectory per run.
type DiskStore struct {
	mu  sync.Mutex
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir. When dir is empty a
// temp directory is created lazily on the first Save.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Save writes the encoded items of result and its manifest.
func (s *DiskStore) Save(result *workflow.RunResult) (*Manifest, error) {
	root, err := s.ensureDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, result.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}

	m := &Manifest{
		ID:        result.ID,
		Dir:       dir,
		Items:     make([]Entry, 0, len(result.Items)),
		Stdout:    string(result.Stdout),
		Truncated: result.Truncated,
	}
	for i, it := range result.Items {
		e := Entry{Kind: it.Kind.String(), MIMEType: it.MIMEType}
		if len(it.Data) > 0 {
			ext, err := extension(it.MIMEType, it.Data)
			if err != nil {
				return nil, fmt.Errorf("item %d of run %s: %w", i, result.ID, err)
			}
			e.File = filepath.Join(dir, fmt.Sprintf("%d%s", i, ext))
			if err := os.WriteFile(e.File, it.Data, 0o644); err != nil {
				return nil, fmt.Errorf("writing item %d of run %s: %w", i, result.ID, err)
			}
		} else {
			e.Text = it.String()
		}
		m.Items = append(m.Items, e)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling manifest %s: %w", result.ID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("writing manifest %s: %w", result.ID, err)
	}
	return m, nil
}

// Load reads the manifest of a saved run.
func (s *DiskStore) Load(runID string) (*Manifest, error) {
	root, err := s.ensureDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(root, runID, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", runID, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshalling manifest %s: %w", runID, err)
	}
	return &m, nil
}

func (s *DiskStore) ensureDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != "" {
		return s.dir, nil
	}
	dir, err := os.MkdirTemp("", "glyphrun-runs-*")
	if err != nil {
		return "", fmt.Errorf("creating result directory: %w", err)
	}
	s.dir = dir
	return dir, nil
}

// extension returns the file extension of the declared MIME type after
// checking that data really is of that type.
func extension(declared string, data []byte) (string, error) {
	want := mimetype.Lookup(declared)
	if want == nil {
		return "", fmt.Errorf("unknown MIME type %q", declared)
	}
	if got := mimetype.Detect(data); !got.Is(declared) {
		return "", fmt.Errorf("data is %s, not %s", got, declared)
	}
	return want.Extension(), nil
}
