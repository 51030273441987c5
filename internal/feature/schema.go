// Package feature derives model-ready vectors from normalized job
// records against a fixed, versioned feature schema.
package feature

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/laborlens/jobmarket-cli/internal/model"
	"github.com/laborlens/jobmarket-cli/internal/normalize"
)

// SchemaVersion is bumped whenever the column derivation changes.
const SchemaVersion = "v1"

// Schema is the fixed, ordered feature layout. Training and inference
// must share an identical schema; the column order below is the
// contract.
type Schema struct {
	Version      string   `yaml:"version"`
	Technologies []string `yaml:"technologies"`
	Locations    []string `yaml:"locations"`
	Contracts    []string `yaml:"contracts"`
	RemoteModes  []string `yaml:"remote_modes"`
	Experience   []string `yaml:"experience"`

	columns []string
}

// DefaultSchema builds the schema over the pipeline's fixed
// vocabularies.
func DefaultSchema() *Schema {
	return &Schema{
		Version:      SchemaVersion,
		Technologies: normalize.DefaultVocabulary,
		Locations:    normalize.DefaultLocations,
		Contracts: []string{
			string(model.ContractFullTime), string(model.ContractPartTime),
			string(model.ContractContract), string(model.ContractInternship),
			string(model.ContractUnknown),
		},
		RemoteModes: []string{
			string(model.RemoteOnsite), string(model.RemoteRemote),
			string(model.RemoteHybrid), string(model.RemoteUnknown),
		},
		Experience: []string{
			string(model.ExperienceJunior), string(model.ExperienceMid),
			string(model.ExperienceSenior), string(model.ExperienceUnknown),
		},
	}
}

// Columns returns the ordered feature names: technology flags,
// location one-hots, contract one-hots, remote one-hots, experience
// one-hots, then the numeric experience-years proxy.
func (s *Schema) Columns() []string {
	if s.columns != nil {
		return s.columns
	}
	var cols []string
	for _, t := range s.Technologies {
		cols = append(cols, "tech_"+slug(t))
	}
	for _, l := range s.Locations {
		cols = append(cols, "loc_"+slug(l))
	}
	for _, c := range s.Contracts {
		cols = append(cols, "contract_"+slug(c))
	}
	for _, r := range s.RemoteModes {
		cols = append(cols, "remote_"+slug(r))
	}
	for _, e := range s.Experience {
		cols = append(cols, "exp_"+slug(e))
	}
	cols = append(cols, "exp_years")
	s.columns = cols
	return cols
}

// Save writes the schema artifact so downstream training and the
// dashboard inspect identical column semantics.
func (s *Schema) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "schema: marshal")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "schema: create dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "schema: write %s", path)
	}
	return nil
}

// LoadSchema reads a schema artifact. An absent file is a
// MissingArtifactError so callers can surface stage guidance.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &model.MissingArtifactError{Path: path, Hint: "run the extract stage first"}
		}
		return nil, eris.Wrapf(err, "schema: read %s", path)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrapf(err, "schema: unmarshal %s", path)
	}
	return &s, nil
}

var slugReplacer = strings.NewReplacer("#", "sharp", "+", "p", ".", "", " ", "_", "-", "_")

// slug converts a vocabulary entry to a stable column token:
// "C#" -> "csharp", "C++" -> "cpp", "Vue.js" -> "vuejs".
func slug(s string) string {
	s = slugReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
	return s
}
