// Package dataset reads and writes the pipeline's file artifacts: raw
// offer CSVs and XLSX exports, and the processed canonical dataset.
package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/laborlens/jobmarket-cli/internal/model"
	"github.com/laborlens/jobmarket-cli/internal/normalize"
)

// ReadRaw reads a raw offers CSV into header-keyed records. Rows
// shorter than the header leave the trailing columns empty.
func ReadRaw(path string) ([]normalize.RawRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &model.MissingArtifactError{Path: path, Hint: "run the collect stage first"}
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open raw csv")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read raw csv header")
	}

	var records []normalize.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "dataset: read raw csv row")
		}

		rec := make(normalize.RawRecord, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRaw writes raw records under the given column order. A nil
// columns slice falls back to the sorted union of all keys.
func WriteRaw(path string, records []normalize.RawRecord, columns []string) error {
	if columns == nil {
		columns = unionColumns(records)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "dataset: create raw directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "dataset: create raw csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return eris.Wrap(err, "dataset: write raw csv header")
	}

	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			row[i] = rec[col]
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "dataset: write raw csv row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "dataset: flush raw csv")
}

// WriteRecords writes the processed canonical dataset.
func WriteRecords(path string, records []model.JobRecord) error {
	data, err := csvutil.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "dataset: encode processed csv")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "dataset: create processed directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "dataset: write processed csv")
	}
	return nil
}

// ReadRecords reads the processed canonical dataset.
func ReadRecords(path string) ([]model.JobRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &model.MissingArtifactError{Path: path, Hint: "run the normalize stage first"}
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read processed csv")
	}

	var records []model.JobRecord
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "dataset: decode processed csv")
	}
	return records, nil
}

func unionColumns(records []normalize.RawRecord) []string {
	seen := map[string]struct{}{}
	var columns []string
	for _, rec := range records {
		for col := range rec {
			if _, dup := seen[col]; !dup {
				seen[col] = struct{}{}
				columns = append(columns, col)
			}
		}
	}
	sort.Strings(columns)
	return columns
}
