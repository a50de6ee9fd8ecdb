// Package schema defines the canonical field set for bill-of-entry records.
//
// The schema is fixed at deployment time. Source files may name columns
// however they like; each canonical field carries the set of header aliases
// it accepts. Everything downstream of the normalizer (aggregation, template
// binding) works exclusively in terms of these field names.
package schema

import "strings"

// FieldKind is the data type a field is coerced to during normalization.
type FieldKind int

const (
	KindText FieldKind = iota
	KindAmount
)

// MergeRule controls how a field is combined when records are aggregated
// under the same group key.
type MergeRule int

const (
	// MergeFirst keeps the first-seen value and ignores later ones.
	MergeFirst MergeRule = iota

	// MergeSum adds decimal amounts across the group.
	MergeSum

	// MergeCollect appends values to an ordered, exact-match-deduplicated
	// list rendered as a comma-joined string.
	MergeCollect

	// MergeCollectAll appends values without deduplication.
	MergeCollectAll
)

// Field describes one canonical column of the record schema.
type Field struct {
	Name     string    // canonical field name, also the template placeholder token
	Aliases  []string  // accepted source column headers, matched case-insensitively
	Kind     FieldKind
	Required bool      // a required field must have a matching source column
	Merge    MergeRule // behavior in aggregated mode
}

// GroupKeyField is the field records are grouped by in aggregated mode.
const GroupKeyField = "importer_name"

// NameField supplies the document filename stem.
const NameField = "importer_name"

// BillOfEntry is the deployment schema, mirroring the columns of the
// customs bill-of-entry worksheets this service ingests.
var BillOfEntry = []Field{
	{Name: "sr_no", Aliases: []string{"Sr. No.", "Sr No", "Sr. No"}, Kind: KindText, Merge: MergeCollectAll},
	{Name: "be_number", Aliases: []string{"BE Number"}, Kind: KindText, Merge: MergeCollect},
	{Name: "be_date", Aliases: []string{"BE Date"}, Kind: KindText, Merge: MergeCollect},
	{Name: "importer_name", Aliases: []string{"Importer Name", "Importer"}, Kind: KindText, Required: true, Merge: MergeFirst},
	{Name: "address", Aliases: []string{"ADDRESS", "Address"}, Kind: KindText, Merge: MergeFirst},
	{Name: "hs_code", Aliases: []string{"Eight Digit HS Code", "HS Code", "HSCode"}, Kind: KindText, Merge: MergeCollect},
	{Name: "description", Aliases: []string{"Full Item Description", "Description", "Item Description"}, Kind: KindText, Merge: MergeCollect},
	{Name: "assessable_value", Aliases: []string{"Assessable Value Amount", "Assessable Value", "Amount"}, Kind: KindAmount, Merge: MergeSum},
	{Name: "bcd_rate", Aliases: []string{"BCD Rate"}, Kind: KindText, Merge: MergeCollect},
	{Name: "igst_rate", Aliases: []string{"IGST Rate"}, Kind: KindText, Merge: MergeCollect},
	{Name: "duty_paid", Aliases: []string{"Total Duty Paid Amount", "Duty Paid"}, Kind: KindAmount, Merge: MergeSum},
	{Name: "effective_rate", Aliases: []string{"Effective Rate of duty (BCD@35% + SWS@10% + IGST@28%)", "Effective Rate of Duty", "Effective Rate"}, Kind: KindText, Merge: MergeCollect},
	{Name: "duty_payable", Aliases: []string{"Duty Payable"}, Kind: KindAmount, Merge: MergeSum},
	{Name: "differential_duty", Aliases: []string{"Differential Duty"}, Kind: KindAmount, Merge: MergeSum},
	{Name: "cha_details", Aliases: []string{"CHA details", "CHA Details", "CHA"}, Kind: KindText, Merge: MergeCollect},
}

// Lookup returns the field with the given canonical name.
// The match is case-insensitive after trimming, since placeholder tokens
// come from hand-edited templates.
func Lookup(fields []Field, name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, f := range fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the canonical field names in schema order.
func Names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
