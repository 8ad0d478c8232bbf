package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// fecRow mirrors the 18 mandatory columns of the Fichier des Écritures
// Comptables (article A47 A-1 LPF). Column names in a compliant export are
// fixed, so rows unmarshal directly by header.
type fecRow struct {
	JournalCode   string `csv:"JournalCode"`
	JournalLib    string `csv:"JournalLib"`
	EcritureNum   string `csv:"EcritureNum"`
	EcritureDate  string `csv:"EcritureDate"`
	CompteNum     string `csv:"CompteNum"`
	CompteLib     string `csv:"CompteLib"`
	CompAuxNum    string `csv:"CompAuxNum"`
	CompAuxLib    string `csv:"CompAuxLib"`
	PieceRef      string `csv:"PieceRef"`
	PieceDate     string `csv:"PieceDate"`
	EcritureLib   string `csv:"EcritureLib"`
	Debit         string `csv:"Debit"`
	Credit        string `csv:"Credit"`
	EcritureLet   string `csv:"EcritureLet"`
	DateLet       string `csv:"DateLet"`
	ValidDate     string `csv:"ValidDate"`
	MontantDevise string `csv:"Montantdevise"`
	IDevise       string `csv:"Idevise"`
}

// fecHeaders is the canonical header order of the produced Table.
var fecHeaders = []string{
	"journal_code", "journal_lib", "ecriture_num", "ecriture_date",
	"compte_num", "compte_lib", "comp_aux_num", "comp_aux_lib",
	"piece_ref", "piece_date", "ecriture_lib", "debit", "credit",
	"ecriture_let", "date_let", "valid_date", "montant_devise", "idevise",
}

// ParseFEC reads a strict FEC export. The delimiter is sniffed from the
// header line (the standard allows tab or pipe; semicolon shows up in the
// wild). Rows come back in the same Table shape as the loose parsers, keyed
// by the canonical lower-cased field names.
func ParseFEC(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	delim := sniffFECDelimiter(data)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows []*fecRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, fmt.Errorf("parse FEC: %w", err)
	}

	table := &Table{Headers: fecHeaders, Rows: make([]RawRow, 0, len(rows))}
	for _, fr := range rows {
		row := zipRow(fecHeaders, []string{
			fr.JournalCode, fr.JournalLib, fr.EcritureNum, fr.EcritureDate,
			fr.CompteNum, fr.CompteLib, fr.CompAuxNum, fr.CompAuxLib,
			fr.PieceRef, fr.PieceDate, fr.EcritureLib, fr.Debit, fr.Credit,
			fr.EcritureLet, fr.DateLet, fr.ValidDate, fr.MontantDevise, fr.IDevise,
		})
		if rowIsEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// sniffFECDelimiter picks the delimiter with the most occurrences in the
// header line. Tab wins ties since it is the documented default.
func sniffFECDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, count := '\t', bytes.Count(line, []byte{'\t'})
	for _, c := range []byte{'|', ';'} {
		if n := bytes.Count(line, []byte{c}); n > count {
			best, count = rune(c), n
		}
	}
	return best
}
