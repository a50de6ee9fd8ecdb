package decode

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// decodeXLSX parses the first worksheet of an XLSX workbook into RawRows.
// Cell values come back from excelize already rendered as strings, with
// numeric cells in plain (non-scientific) notation.
func decodeXLSX(data []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: Malformed, Detail: "unreadable workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &Error{Kind: Malformed, Detail: "workbook has no sheets"}
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &Error{Kind: Malformed, Detail: "unreadable sheet", Err: err}
	}

	return buildRows(raw)
}
