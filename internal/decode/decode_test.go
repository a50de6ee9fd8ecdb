package decode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        Format
	}{
		{"xlsx extension", "import.xlsx", "", FormatXLSX},
		{"csv extension", "import.csv", "", FormatCSV},
		{"uppercase extension", "IMPORT.CSV", "", FormatCSV},
		{"extension wins over content type", "import.csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatCSV},
		{"xlsx content type fallback", "upload.bin", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatXLSX},
		{"csv content type fallback", "upload.bin", "text/csv", FormatCSV},
		{"legacy xls extension", "import.xls", "", FormatUnknown},
		{"legacy xls with excel content type", "import.xls", "application/vnd.ms-excel", FormatUnknown},
		{"legacy xls never reaches content type fallback", "import.xls", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatUnknown},
		{"unknown", "notes.txt", "text/plain", FormatUnknown},
		{"empty", "", "", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.filename, tt.contentType))
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	data := []byte("Importer,HSCode,Amount\nAcme,1001,100.00\nGlobex,2002,250.50\n")

	rows, err := Decode(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"Importer", "HSCode", "Amount"}, rows[0].Headers)
	assert.Equal(t, "Acme", rows[0].Get("Importer"))
	assert.Equal(t, "1001", rows[0].Get("HSCode"))
	assert.Equal(t, "Globex", rows[1].Get("Importer"))
}

func TestDecodeCSV_BOMStripped(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Name,Amount\nAcme,1\n")...)

	rows, err := Decode(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Get("Name"))
}

func TestDecodeCSV_SkipsEmptyRows(t *testing.T) {
	data := []byte("Name,Amount\nAcme,1\n,\n  , \nGlobex,2\n,\n")

	rows, err := Decode(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0].Get("Name"))
	assert.Equal(t, "Globex", rows[1].Get("Name"))
}

func TestDecodeCSV_RaggedRowPadded(t *testing.T) {
	data := []byte("Name,Amount,Note\nAcme,1\n")

	rows, err := Decode(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Get("Note"))
}

func TestDecodeCSV_TrimsCells(t *testing.T) {
	data := []byte(" Name , Amount \n  Acme  , 1 \n")

	rows, err := Decode(data, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Amount"}, rows[0].Headers)
	assert.Equal(t, "Acme", rows[0].Get("Name"))
}

func TestDecode_DuplicateHeader(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"exact duplicate", "Name,Amount,Name\nAcme,1,x\n"},
		{"case-insensitive duplicate", "Name,Amount,NAME\nAcme,1,x\n"},
		{"empty header cell", "Name,,Amount\nAcme,x,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), FormatCSV)
			var decErr *Error
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, DuplicateHeader, decErr.Kind)
		})
	}
}

func TestDecode_HeaderOnly(t *testing.T) {
	rows, err := Decode([]byte("Name,Amount\n"), FormatCSV)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte("x"), FormatUnknown)
	var decErr *Error
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, UnsupportedFormat, decErr.Kind)
}

func TestDecodeXLSX_Malformed(t *testing.T) {
	_, err := Decode([]byte("this is not a workbook"), FormatXLSX)
	var decErr *Error
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, Malformed, decErr.Kind)
}

func TestDecodeXLSX_RoundTrip(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Importer", "HSCode", "Amount"},
		{"Acme", "1001", 100.0},
		{"Globex", "2002", 250.5},
	})

	rows, err := Decode(data, FormatXLSX)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"Importer", "HSCode", "Amount"}, rows[0].Headers)
	assert.Equal(t, "Acme", rows[0].Get("Importer"))
	assert.Equal(t, "100", rows[0].Get("Amount"))
	assert.Equal(t, "250.5", rows[1].Get("Amount"))
}

func TestDecodeXLSX_SkipsEmptyRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Name", "Amount"},
		{"Acme", "1"},
		{"", ""},
		{"Globex", "2"},
	})

	rows, err := Decode(data, FormatXLSX)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Globex", rows[1].Get("Name"))
}

// buildWorkbook writes rows into the first sheet of an in-memory workbook.
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}
