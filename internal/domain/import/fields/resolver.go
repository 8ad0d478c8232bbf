// Package fields maps the loosely-named column headers found in French
// accounting exports onto canonical field names. Every export tool spells
// the FEC columns slightly differently (accents dropped, words reordered,
// English translations), so matching is substring containment over a table
// of known synonyms rather than exact comparison.
package fields

import "strings"

// Canonical field names understood by the transaction mapper.
const (
	EcritureDate  = "ecriture_date"
	EcritureLib   = "ecriture_lib"
	Debit         = "debit"
	Credit        = "credit"
	Amount        = "amount"
	JournalCode   = "journal_code"
	JournalLib    = "journal_lib"
	JournalType   = "journal_type"
	EcritureNum   = "ecriture_num"
	CompteNum     = "compte_num"
	CompteLib     = "compte_lib"
	CompAuxNum    = "comp_aux_num"
	CompAuxLib    = "comp_aux_lib"
	PieceRef      = "piece_ref"
	PieceDate     = "piece_date"
	EcritureLet   = "ecriture_let"
	DateLet       = "date_let"
	ValidDate     = "valid_date"
	MontantDevise = "montant_devise"
	IDevise       = "idevise"
	NumDoc        = "num_doc"
)

// NotFound is the sentinel index returned when no header matches.
const NotFound = -1

// Synonyms maps a canonical field name to the ordered list of substrings
// that identify it in a header. Earlier entries are the more specific
// spellings; order matters only for readability since any match wins.
type Synonyms map[string][]string

// DefaultSynonyms returns the built-in synonym table covering accented and
// non-accented French variants plus the English spellings seen in practice.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		EcritureDate: {"ecriture_date", "ecrituredate", "date_ecriture", "date"},
		PieceDate:    {"piece_date", "piecedate", "date_piece", "date_pièce"},
		DateLet:      {"date_let", "datelet", "date_lettrage"},
		ValidDate:    {"valid_date", "validdate", "date_validation"},

		EcritureLib: {"ecriture_lib", "ecriturelib", "libelle_ecriture", "libelle", "libellé", "description", "desc"},
		JournalLib:  {"journal_lib", "journallib", "libelle_journal"},
		CompteLib:   {"compte_lib", "comptelib", "libelle_compte"},
		CompAuxLib:  {"comp_aux_lib", "compauxlib", "libelle_auxiliaire"},

		Debit:         {"debit", "débit"},
		Credit:        {"credit", "crédit"},
		Amount:        {"amount", "montant", "value", "valeur"},
		MontantDevise: {"montant_devise", "montantdevise", "montant_en_devise"},

		JournalCode: {"journal_code", "journalcode", "code_journal"},
		CompteNum:   {"compte_num", "comptenum", "numero_compte", "numéro_compte", "compte"},
		CompAuxNum:  {"comp_aux_num", "compauxnum", "numero_auxiliaire"},
		EcritureNum: {"ecriture_num", "ecriturenum", "numero_ecriture"},
		PieceRef:    {"piece_ref", "pieceref", "reference_piece", "référence"},
		EcritureLet: {"ecriture_let", "ecriturelet", "lettrage"},
		NumDoc:      {"num_doc", "numdoc", "numero_document"},
		IDevise:     {"idevise", "devise", "currency"},
		JournalType: {"journal_type", "journaltype", "type_journal"},
	}
}

// Resolver resolves canonical field names against a header row. The synonym
// table is fixed at construction so tests can substitute custom mappings.
type Resolver struct {
	synonyms Synonyms
}

// NewResolver builds a resolver over the given synonym table. A nil table
// falls back to DefaultSynonyms.
func NewResolver(synonyms Synonyms) *Resolver {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Resolver{synonyms: synonyms}
}

// Resolve returns the index of the first header, in original column order,
// matching any synonym of the canonical field case-insensitively. An exact
// header match anywhere in the row beats substring containment, so a bare
// "devise" column is not shadowed by "montant_devise". Returns NotFound
// when no header matches. A canonical name absent from the table matches
// against itself, so unknown fields still resolve when the export uses the
// canonical spelling.
func (r *Resolver) Resolve(canonical string, headers []string) int {
	variants, ok := r.synonyms[canonical]
	if !ok {
		variants = []string{canonical}
	}

	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		for _, variant := range variants {
			if h == strings.ToLower(variant) {
				return i
			}
		}
	}
	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		for _, variant := range variants {
			if strings.Contains(h, strings.ToLower(variant)) {
				return i
			}
		}
	}
	return NotFound
}
