package decode

import (
	"bytes"
	"encoding/csv"
	"io"
)

// utf8BOM is stripped before parsing; Excel prepends it when exporting CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeCSV parses delimited text into RawRows. Quoting is handled lazily
// because hand-edited exports routinely carry stray quotes.
func decodeCSV(data []byte) ([]RawRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows are padded during buildRows
	r.LazyQuotes = true

	var raw [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &Error{Kind: Malformed, Detail: "invalid csv", Err: err}
		}
		raw = append(raw, rec)
	}

	return buildRows(raw)
}
