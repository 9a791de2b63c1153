package store

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/arenapat/internal/diag"
	"github.com/coreman2200/arenapat/internal/pattern"
)

// Manifest records how a pattern file was produced. It is written next to
// the .pat file with a .yaml extension; controllers never read it.
type Manifest struct {
	RunID       string    `yaml:"run_id"`
	Created     time.Time `yaml:"created"`
	File        string    `yaml:"file"`
	Generation  string    `yaml:"generation"`
	Depth       string    `yaml:"depth"`
	Frames      int       `yaml:"frames"`
	Rows        int       `yaml:"rows"`
	Cols        int       `yaml:"cols"`
	Source      any       `yaml:"source,omitempty"`
	Diagnostics diag.List `yaml:"diagnostics,omitempty"`
	Schedule    []float64 `yaml:"schedule,omitempty"`
}

// NewManifest describes p as saved at path.
func NewManifest(path string, p *pattern.Pattern) Manifest {
	return Manifest{
		RunID:      uuid.NewString(),
		Created:    time.Now().UTC().Truncate(time.Second),
		File:       path,
		Generation: p.Generation.String(),
		Depth:      p.Depth.String(),
		Frames:     p.Len(),
		Rows:       p.Rows(),
		Cols:       p.Cols(),
	}
}

// ManifestPath is the sidecar path for a pattern file.
func ManifestPath(patPath string) string {
	return strings.TrimSuffix(patPath, Ext) + ".yaml"
}

func WriteManifest(patPath string, m Manifest) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(ManifestPath(patPath), b, 0o644)
}

func ReadManifest(patPath string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(ManifestPath(patPath))
	if err != nil {
		return m, err
	}
	err = yaml.Unmarshal(b, &m)
	return m, err
}
