package parser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseExcel reads the first sheet of an .xlsx/.xls workbook. The first row
// is the header; every cell is coerced to a trimmed string. Rows where each
// cell is empty are dropped. A workbook without a header plus at least one
// data row fails with ErrTooFewRows.
func ParseExcel(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", ErrTooFewRows)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	if len(rows) < 2 {
		return nil, ErrTooFewRows
	}

	headers := normalizeHeaders(rows[0])
	table := &Table{Headers: headers, Rows: make([]RawRow, 0, len(rows)-1)}

	for _, cells := range rows[1:] {
		row := zipRow(headers, cells)
		if rowIsEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
