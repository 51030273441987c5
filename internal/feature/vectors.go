package feature

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// SaveVectors writes the extracted feature matrix as JSON.
func SaveVectors(path string, vectors []Vector) error {
	data, err := json.MarshalIndent(vectors, "", "  ")
	if err != nil {
		return eris.Wrap(err, "feature: encode vectors")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "feature: create vectors directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "feature: write vectors")
	}
	return nil
}

// LoadVectors reads a feature matrix written by SaveVectors.
func LoadVectors(path string) ([]Vector, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &model.MissingArtifactError{Path: path, Hint: "run the extract stage first"}
	}
	if err != nil {
		return nil, eris.Wrap(err, "feature: read vectors")
	}

	var vectors []Vector
	if err := json.Unmarshal(data, &vectors); err != nil {
		return nil, eris.Wrap(err, "feature: decode vectors")
	}
	return vectors, nil
}
