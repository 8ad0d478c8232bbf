package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fecHeaderLine = "JournalCode\tJournalLib\tEcritureNum\tEcritureDate\tCompteNum\tCompteLib\tCompAuxNum\tCompAuxLib\tPieceRef\tPieceDate\tEcritureLib\tDebit\tCredit\tEcritureLet\tDateLet\tValidDate\tMontantdevise\tIdevise"

func TestParseFEC_TabDelimited(t *testing.T) {
	input := fecHeaderLine + "\n" +
		"VE\tVentes\t1\t20240115\t706000\tPrestations\t\t\tF001\t20240110\tFacture client\t0.00\t1500.00\t\t\t20240116\t\t\n" +
		"BQ\tBanque\t2\t20240116\t512000\tBanque\t\t\tR001\t20240116\tReglement\t1500.00\t0.00\t\t\t20240117\t\t\n"

	table, err := ParseFEC(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, fecHeaders, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "20240115", table.Rows[0]["ecriture_date"])
	assert.Equal(t, "Facture client", table.Rows[0]["ecriture_lib"])
	assert.Equal(t, "1500.00", table.Rows[0]["credit"])
	assert.Equal(t, "706000", table.Rows[0]["compte_num"])
	assert.Equal(t, "512000", table.Rows[1]["compte_num"])
}

func TestParseFEC_PipeDelimited(t *testing.T) {
	input := strings.ReplaceAll(fecHeaderLine, "\t", "|") + "\n" +
		"AC|Achats|3|20240201|606400|Fournitures|||F002|20240201|Papeterie|45.90|0.00|||20240202||\n"

	table, err := ParseFEC(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Papeterie", table.Rows[0]["ecriture_lib"])
	assert.Equal(t, "45.90", table.Rows[0]["debit"])
}

func TestParseFEC_SemicolonDelimited(t *testing.T) {
	input := strings.ReplaceAll(fecHeaderLine, "\t", ";") + "\n" +
		"OD;Divers;4;20240301;411000;Clients;;;;;Lettrage;100.00;0.00;AA;20240301;20240302;;\n"

	table, err := ParseFEC(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "411000", table.Rows[0]["compte_num"])
	assert.Equal(t, "AA", table.Rows[0]["ecriture_let"])
}

func TestParseFEC_DropsEmptyRows(t *testing.T) {
	input := fecHeaderLine + "\n" +
		"VE\tVentes\t1\t20240115\t706000\tPrestations\t\t\tF001\t20240110\tFacture\t0.00\t1500.00\t\t\t\t\t\n" +
		"\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t\n"

	table, err := ParseFEC(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestSniffFECDelimiter(t *testing.T) {
	tests := []struct {
		name string
		line string
		want rune
	}{
		{"tab", "a\tb\tc", '\t'},
		{"pipe", "a|b|c", '|'},
		{"semicolon", "a;b;c", ';'},
		{"tab wins ties", "a\tb|c\t|d", '\t'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniffFECDelimiter([]byte(tt.line)))
		})
	}
}
