package salary

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/laborlens/jobmarket-cli/internal/model"
)

// Save writes the model artifact as indented JSON, creating parent
// directories as needed.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return eris.Wrap(err, "salary: encode model artifact")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "salary: create model directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "salary: write model artifact")
	}
	return nil
}

// Load reads a model artifact from disk.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &model.MissingArtifactError{Path: path, Hint: "run the train stage first"}
	}
	if err != nil {
		return nil, eris.Wrap(err, "salary: read model artifact")
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "salary: decode model artifact")
	}
	return &m, nil
}
