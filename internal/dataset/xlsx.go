package dataset

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/laborlens/jobmarket-cli/internal/normalize"
)

// ReadRawXLSX reads the first sheet of an XLSX export into header-keyed
// records, same layout as ReadRaw.
func ReadRawXLSX(path string) ([]normalize.RawRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("dataset: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	header := rowStrings(sheet.Rows[0])
	var records []normalize.RawRecord
	for _, row := range sheet.Rows[1:] {
		cells := rowStrings(row)
		rec := make(normalize.RawRecord, len(header))
		for i, col := range header {
			if i < len(cells) {
				rec[col] = cells[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func rowStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
