package core

// normalize.go maps decoded rows onto the canonical schema.
//
// Source files rarely match the schema exactly: headers vary in case and
// spelling, amounts arrive with currency symbols and thousands separators,
// and cells carry stray whitespace. Normalization absorbs all of that so
// nothing downstream ever sees a raw cell again.

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"docgen/internal/decode"
	"docgen/internal/schema"
)

// numericRegex validates an amount string after symbol cleanup. Matches
// integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Normalize converts one decoded row into a Record. For each schema field
// the first alias present in the row (case-insensitive after trimming)
// supplies the raw value. Missing required columns and unparseable amounts
// abort the request; extra source columns are dropped.
func Normalize(row decode.RawRow, fields []schema.Field) (Record, error) {
	values := make(map[string]Value, len(fields))

	for _, f := range fields {
		raw, found := matchAlias(row, f)
		if !found {
			if f.Required {
				return Record{}, &NormalizeError{Kind: MissingField, Field: f.Name}
			}
			continue // typed zero applied by NewRecord
		}

		switch f.Kind {
		case schema.KindAmount:
			if raw == "" {
				if f.Required {
					return Record{}, &NormalizeError{Kind: InvalidValue, Field: f.Name, Detail: "empty amount"}
				}
				values[f.Name] = AmountValue(decimal.Zero)
				continue
			}
			amt, ok := ParseAmount(raw)
			if !ok {
				return Record{}, &NormalizeError{Kind: InvalidValue, Field: f.Name, Detail: raw}
			}
			values[f.Name] = AmountValue(amt)

		default:
			values[f.Name] = TextValue(strings.TrimSpace(raw))
		}
	}

	return NewRecord(fields, values), nil
}

// NormalizeAll normalizes every row in order.
func NormalizeAll(rows []decode.RawRow, fields []schema.Field) ([]Record, error) {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := Normalize(row, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// matchAlias finds the first accepted header present in the row: the
// field's aliases in order, then the canonical name itself. Headers are
// compared case-insensitively after trimming.
func matchAlias(row decode.RawRow, f schema.Field) (string, bool) {
	for _, alias := range append(append([]string{}, f.Aliases...), f.Name) {
		for _, h := range row.Headers {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(alias)) {
				return row.Cells[h], true
			}
		}
	}
	return "", false
}

// ParseAmount parses a decimal amount from messy source data. It tolerates
// thousands separators, surrounding currency symbols, percent signs, and
// the accounting convention of parenthesized negatives.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"$", "€", "£", "₹", "%", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
