// README: Model artifact store backed by the local filesystem.
package pricing

import (
	"encoding/json"
	"fmt"
	"os"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// LoadArtifact reads and decodes the artifact. Unknown JSON fields are rejected
// so a renamed key fails loudly at startup instead of predicting with zeros.
func (s *Store) LoadArtifact() (Artifact, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return Artifact{}, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	var a Artifact
	if err := dec.Decode(&a); err != nil {
		return Artifact{}, fmt.Errorf("decode model artifact %s: %w", s.path, err)
	}
	return a, nil
}
