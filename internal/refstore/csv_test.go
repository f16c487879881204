package refstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource_Load(t *testing.T) {
	path := writeCSV(t, "SITE;ENTREPRISE;ADRESSE;CODE_POSTAL;VILLE\n"+
		"1001;MCDONALDS;4 RUE GROLEE;69002;LYON\n"+
		"1002;QUICK DIJON;2 PLACE DARCY;21000;DIJON\n")

	rows, warnings, err := CSVSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, rows, 2)
	assert.Equal(t, "1001", rows[0].CanonicalID)
	assert.Equal(t, "MCDONALDS", rows[0].CanonicalName)
	assert.Equal(t, "69002", rows[0].PostalCode)
	assert.Equal(t, "DIJON", rows[1].City)
}

func TestCSVSource_ByteOrderMark(t *testing.T) {
	path := writeCSV(t, "\uFEFFidentifier;name;street_address;postal_code;city\n"+
		"1001;MCDONALDS;4 RUE GROLEE;69002;LYON\n")

	rows, _, err := CSVSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1001", rows[0].CanonicalID)
}

func TestCSVSource_CustomDelimiter(t *testing.T) {
	path := writeCSV(t, "identifier,name,street_address,postal_code,city\n"+
		"1001,MCDONALDS,4 RUE GROLEE,69002,LYON\n")

	rows, _, err := CSVSource{Path: path, Delimiter: ','}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestCSVSource_MissingColumn(t *testing.T) {
	path := writeCSV(t, "identifier;name;street_address;postal_code\n1001;X;Y;75001\n")

	_, _, err := CSVSource{Path: path}.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "city")
}

func TestCSVSource_RaggedRowTolerated(t *testing.T) {
	// A short row yields empty trailing fields rather than aborting the load.
	path := writeCSV(t, "identifier;name;street_address;postal_code;city\n"+
		"1001;MCDONALDS\n"+
		"1002;QUICK;2 PLACE DARCY;21000;DIJON\n")

	rows, warnings, err := CSVSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].PostalCode)
	assert.Equal(t, "21000", rows[1].PostalCode)
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, _, err := CSVSource{Path: "/does/not/exist.csv"}.Load(context.Background())
	assert.Error(t, err)
}

func TestCSVSource_Cancelled(t *testing.T) {
	path := writeCSV(t, "identifier;name;street_address;postal_code;city\n1001;X;;;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := CSVSource{Path: path}.Load(ctx)
	assert.Error(t, err)
}
