package model

import (
	"fmt"
	"strings"
)

// SchemaMismatchError is returned when a feature vector's column set
// does not match a trained model's stored schema. Never silently
// coerced: the caller must rebuild features against the right schema.
type SchemaMismatchError struct {
	Missing []string // columns the model expects but the input lacks
	Extra   []string // columns the input carries but the model does not know
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing columns: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unknown columns: %s", strings.Join(e.Extra, ", ")))
	}
	if len(parts) == 0 {
		parts = append(parts, "column order differs")
	}
	return "feature schema mismatch: " + strings.Join(parts, "; ")
}

// MissingArtifactError is returned when a stage's required input file
// or persisted model is absent. Fatal for that stage only.
type MissingArtifactError struct {
	Path string
	Hint string
}

func (e *MissingArtifactError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("missing artifact %s (%s)", e.Path, e.Hint)
	}
	return fmt.Sprintf("missing artifact %s", e.Path)
}

// InsufficientDataError is returned when a stage lacks enough
// observations to proceed (e.g. model training below the minimum
// record threshold). Statistical routines report the same condition as
// a structured result instead of an error.
type InsufficientDataError struct {
	Stage string
	Have  int
	Need  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: have %d records, need %d", e.Stage, e.Have, e.Need)
}
