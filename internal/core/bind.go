package core

// bind.go turns one record into one generated document.
//
// Binding resolves each template placeholder to the record's formatted
// field value. Text is inserted verbatim; amounts are printed with two
// fixed decimals (half-up rounding) and thousands separators. A token that
// matches no schema field fails the whole request.

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"docgen/internal/docx"
	"docgen/internal/schema"
)

// GeneratedDocument is one finished document awaiting archiving.
type GeneratedDocument struct {
	Filename string
	Data     []byte
}

// amountPrinter renders grouped integer parts ("1,234,567").
var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a decimal with two fixed fraction digits, half-up
// rounding, and thousands separators.
func FormatAmount(d decimal.Decimal) string {
	// StringFixed rounds half away from zero, which is half-up for the
	// positive amounts this pipeline deals in.
	fixed := d.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	grouped := intPart
	if n, err := strconv.ParseInt(intPart, 10, 64); err == nil {
		grouped = amountPrinter.Sprintf("%v", number.Decimal(n))
	}

	out := grouped + "." + fracPart
	if negative {
		out = "-" + out
	}
	return out
}

// FieldText returns the formatted display value of one record field.
func FieldText(rec Record, f schema.Field) string {
	v, _ := rec.Value(f.Name)
	if f.Kind == schema.KindAmount {
		return FormatAmount(v.Amount)
	}
	return v.Text
}

// Bind renders the template against one record.
func Bind(rec Record, tpl *docx.Template, filename string) (GeneratedDocument, error) {
	data, err := tpl.Render(func(token string) (string, bool) {
		f, ok := schema.Lookup(rec.Fields(), token)
		if !ok {
			return "", false
		}
		return FieldText(rec, f), true
	})
	if err != nil {
		var unresolved *docx.UnresolvedTokenError
		if errors.As(err, &unresolved) {
			return GeneratedDocument{}, &BindError{Kind: UnknownPlaceholder, Token: unresolved.Token}
		}
		return GeneratedDocument{}, &BindError{Kind: TemplateUnavailable, Err: err}
	}
	return GeneratedDocument{Filename: filename, Data: data}, nil
}

// invalidFilenameChars are stripped from document names. Covers path
// separators and the characters Windows refuses in filenames.
var invalidFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// Filenames assigns an output filename to each record before binding
// starts, so parallel binding cannot affect naming. Names follow
// Document_<n>_<name>.docx with a 1-based record sequence number, which
// keeps entries collision-free and self-ordering even when records share
// a name.
func Filenames(records []Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		stem := sanitizeFilename(rec.Text(schema.NameField))
		out[i] = fmt.Sprintf("Document_%d_%s.docx", i+1, stem)
	}
	return out
}

// sanitizeFilename makes a record name safe for use as an archive entry.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(invalidFilenameChars.ReplaceAllString(name, "_"))
	if name == "" {
		return "Unknown"
	}
	return name
}
