// Package parser reads general-ledger export files (CSV, Excel, FEC) into a
// uniform tabular shape consumed by the transaction mapper. Parsers only
// deal with shape: header normalization, cell trimming and structural
// validation. Field meaning is resolved downstream.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Structural errors fatal to a single import call.
var (
	// ErrUnsupportedFormat is returned before any parse attempt when the
	// file extension is not one of the supported ledger export formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrTooFewRows is returned when a workbook lacks a header row plus at
	// least one data row.
	ErrTooFewRows = errors.New("file must have at least 2 rows (header + data)")
)

// RawRow maps a lower-cased trimmed header to the string cell value of one
// data row. Rows are ephemeral: produced by a parser, consumed once by the
// mapper.
type RawRow map[string]string

// Table is the uniform output of every parser: ordered normalized headers
// and the data rows keyed by them.
type Table struct {
	Headers []string
	Rows    []RawRow
}

// minRowCells is the structural floor for a delimited data row. Shorter
// rows are footer lines, totals or stray newlines and are dropped.
const minRowCells = 3

// ParseDelimited reads comma-delimited text where the first record is the
// header row. Quoted fields and embedded delimiters follow the CSV grammar
// (the naive split-on-comma of older export tooling silently corrupted
// libellés containing commas). Records with fewer than three cells are
// dropped; cell values are trimmed. A file with no content at all is an
// empty table, not a structural failure.
func ParseDelimited(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	headers := normalizeHeaders(header)
	table := &Table{Headers: headers, Rows: make([]RawRow, 0, 64)}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if len(record) < minRowCells {
			continue
		}
		table.Rows = append(table.Rows, zipRow(headers, record))
	}

	return table, nil
}

// normalizeHeaders lower-cases and trims a raw header record.
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers
}

// zipRow pairs a cell slice against headers positionally, trimming values.
// Missing trailing cells become empty strings.
func zipRow(headers []string, cells []string) RawRow {
	row := make(RawRow, len(headers))
	for i, h := range headers {
		if i < len(cells) {
			row[h] = strings.TrimSpace(cells[i])
		} else {
			row[h] = ""
		}
	}
	return row
}

// rowIsEmpty reports whether every cell of the row is the empty string.
func rowIsEmpty(row RawRow) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
