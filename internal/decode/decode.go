// Package decode reads uploaded tabular files into ordered row maps.
//
// Two source encodings are supported: XLSX workbooks and CSV text. The
// format is chosen from the declared filename / content type supplied by the
// caller, never by sniffing file contents. The first row is always the
// header row; its cells become the column keys for every following row.
package decode

import (
	"fmt"
	"strings"
)

// Format is the closed set of supported source encodings.
type Format int

const (
	FormatUnknown Format = iota
	FormatXLSX
	FormatCSV
)

// String returns the lowercase name of the format.
func (f Format) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// DetectFormat maps a declared filename and content type to a Format.
// Extension wins over content type since browsers are inconsistent about
// the MIME types they attach to spreadsheet uploads. Legacy binary .xls
// workbooks are not a supported format and stay FormatUnknown.
func DetectFormat(filename, contentType string) Format {
	name := strings.ToLower(strings.TrimSpace(filename))
	switch {
	case strings.HasSuffix(name, ".xlsx"):
		return FormatXLSX
	case strings.HasSuffix(name, ".csv"):
		return FormatCSV
	case strings.HasSuffix(name, ".xls"):
		return FormatUnknown
	}

	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX
	case "text/csv", "application/csv":
		return FormatCSV
	}

	return FormatUnknown
}

// RawRow is one decoded data row: the header cells in source order plus the
// header-to-cell mapping. Rows are immutable once produced.
type RawRow struct {
	Headers []string
	Cells   map[string]string
}

// Get returns the cell under the given header, or "" if absent.
func (r RawRow) Get(header string) string {
	return r.Cells[header]
}

// ErrorKind classifies decode failures.
type ErrorKind int

const (
	// Malformed means the container or delimiter structure is unreadable.
	Malformed ErrorKind = iota

	// DuplicateHeader means the header row repeats a column name, or a
	// header cell is empty.
	DuplicateHeader

	// UnsupportedFormat means the declared format is not in the closed set.
	UnsupportedFormat
)

// Error is a structural decode failure.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case DuplicateHeader:
		return fmt.Sprintf("duplicate header: %s", e.Detail)
	case UnsupportedFormat:
		return fmt.Sprintf("unsupported file format: %s", e.Detail)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("malformed file: %s", e.Detail)
		}
		return "malformed file"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Decode reads the byte stream into an ordered sequence of RawRows using
// the decoder for the declared format. Row order matches the source and
// fully empty rows are skipped.
func Decode(data []byte, format Format) ([]RawRow, error) {
	switch format {
	case FormatXLSX:
		return decodeXLSX(data)
	case FormatCSV:
		return decodeCSV(data)
	default:
		return nil, &Error{Kind: UnsupportedFormat, Detail: format.String()}
	}
}

// buildRows converts a header row plus raw data rows into RawRows.
// The header cells are trimmed and validated for uniqueness; rows whose
// cells are all empty are dropped.
func buildRows(raw [][]string) ([]RawRow, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make([]string, len(raw[0]))
	seen := make(map[string]struct{}, len(raw[0]))
	for i, h := range raw[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, &Error{Kind: DuplicateHeader, Detail: fmt.Sprintf("empty header cell at column %d", i+1)}
		}
		key := strings.ToLower(h)
		if _, dup := seen[key]; dup {
			return nil, &Error{Kind: DuplicateHeader, Detail: h}
		}
		seen[key] = struct{}{}
		headers[i] = h
	}

	var rows []RawRow
	for _, cells := range raw[1:] {
		if rowEmpty(cells) {
			continue
		}
		m := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				m[h] = strings.TrimSpace(cells[i])
			} else {
				m[h] = ""
			}
		}
		rows = append(rows, RawRow{Headers: headers, Cells: m})
	}

	return rows, nil
}

func rowEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
