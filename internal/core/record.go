// Package core implements the document generation pipeline: normalizing
// decoded rows against the deployment schema, aggregating them by importer,
// binding records into the configured template, and packaging the generated
// documents into a single archive.
package core

import (
	"github.com/shopspring/decimal"

	"docgen/internal/schema"
)

// Value is a single typed field value.
type Value struct {
	Kind   schema.FieldKind
	Text   string
	Amount decimal.Decimal
}

// TextValue returns a KindText value.
func TextValue(s string) Value {
	return Value{Kind: schema.KindText, Text: s}
}

// AmountValue returns a KindAmount value.
func AmountValue(d decimal.Decimal) Value {
	return Value{Kind: schema.KindAmount, Amount: d}
}

// Record is a normalized row. It always carries the full schema field set;
// fields absent from the source are present with a zero value. Records are
// not mutated after normalization.
type Record struct {
	fields []schema.Field
	values map[string]Value
}

// NewRecord builds a record over the given schema with the given values.
// Any field not in values gets a typed zero.
func NewRecord(fields []schema.Field, values map[string]Value) Record {
	full := make(map[string]Value, len(fields))
	for _, f := range fields {
		if v, ok := values[f.Name]; ok {
			full[f.Name] = v
			continue
		}
		if f.Kind == schema.KindAmount {
			full[f.Name] = AmountValue(decimal.Zero)
		} else {
			full[f.Name] = TextValue("")
		}
	}
	return Record{fields: fields, values: full}
}

// Fields returns the schema fields in order.
func (r Record) Fields() []schema.Field { return r.fields }

// Value returns the typed value of a canonical field. The bool is false
// only when the name is not in the schema at all.
func (r Record) Value(name string) (Value, bool) {
	f, ok := schema.Lookup(r.fields, name)
	if !ok {
		return Value{}, false
	}
	return r.values[f.Name], true
}

// Text returns the text of a field, or "" if the field is unknown.
func (r Record) Text(name string) string {
	v, ok := r.Value(name)
	if !ok {
		return ""
	}
	return v.Text
}

// Amount returns the decimal amount of a field, or zero if unknown.
func (r Record) Amount(name string) decimal.Decimal {
	v, ok := r.Value(name)
	if !ok {
		return decimal.Zero
	}
	return v.Amount
}

// GroupKey returns the grouping field value used in aggregated mode.
func (r Record) GroupKey() string {
	return r.Text(schema.GroupKeyField)
}
