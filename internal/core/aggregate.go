package core

// aggregate.go merges normalized records that share an importer name into
// one synthetic record per importer.
//
// Merge semantics per field come from the schema: amount columns are summed
// with decimal addition, list columns become ordered comma-joined strings
// deduplicated by exact match, and everything else keeps its first-seen
// value. Output order is first-seen order of the group key, so identical
// input always yields an identical archive.

import (
	"strings"

	"github.com/shopspring/decimal"

	"docgen/internal/schema"
)

// listSeparator joins collected values in aggregated output.
const listSeparator = ","

// accumulator is the in-progress merge state for one group.
type accumulator struct {
	fields  []schema.Field
	first   map[string]Value    // first-seen values, fixed on creation
	sums    map[string]decimal.Decimal
	lists   map[string][]string // collected values in arrival order
	listSet map[string]map[string]struct{}
}

func newAccumulator(fields []schema.Field, rec Record) *accumulator {
	acc := &accumulator{
		fields:  fields,
		first:   make(map[string]Value, len(fields)),
		sums:    make(map[string]decimal.Decimal),
		lists:   make(map[string][]string),
		listSet: make(map[string]map[string]struct{}),
	}
	for _, f := range fields {
		v, _ := rec.Value(f.Name)
		acc.first[f.Name] = v
		switch f.Merge {
		case schema.MergeSum:
			acc.sums[f.Name] = v.Amount
		case schema.MergeCollect, schema.MergeCollectAll:
			acc.listSet[f.Name] = make(map[string]struct{})
			acc.appendValue(f, v.Text)
		}
	}
	return acc
}

func (acc *accumulator) add(rec Record) {
	for _, f := range acc.fields {
		v, _ := rec.Value(f.Name)
		switch f.Merge {
		case schema.MergeSum:
			acc.sums[f.Name] = acc.sums[f.Name].Add(v.Amount)
		case schema.MergeCollect, schema.MergeCollectAll:
			acc.appendValue(f, v.Text)
		}
		// MergeFirst: first-seen value stands, later records ignored.
	}
}

// appendValue adds a collected value, skipping blanks and, for MergeCollect,
// exact-match duplicates.
func (acc *accumulator) appendValue(f schema.Field, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if f.Merge == schema.MergeCollect {
		if _, dup := acc.listSet[f.Name][s]; dup {
			return
		}
		acc.listSet[f.Name][s] = struct{}{}
	}
	acc.lists[f.Name] = append(acc.lists[f.Name], s)
}

// record renders the accumulated state as a Record.
func (acc *accumulator) record() Record {
	values := make(map[string]Value, len(acc.fields))
	for _, f := range acc.fields {
		switch f.Merge {
		case schema.MergeSum:
			values[f.Name] = AmountValue(acc.sums[f.Name])
		case schema.MergeCollect, schema.MergeCollectAll:
			values[f.Name] = TextValue(strings.Join(acc.lists[f.Name], listSeparator))
		default:
			values[f.Name] = acc.first[f.Name]
		}
	}
	return NewRecord(acc.fields, values)
}

// Aggregate groups records by the schema group-key field and merges each
// group into one record, emitted in first-seen key order.
//
// A record with a blank group key becomes its own singleton group; blank
// keys are never merged with each other.
func Aggregate(records []Record, fields []schema.Field) []Record {
	byKey := make(map[string]*accumulator)
	var order []*accumulator

	for _, rec := range records {
		key := strings.TrimSpace(rec.GroupKey())
		if key == "" {
			acc := newAccumulator(fields, rec)
			order = append(order, acc)
			continue
		}
		if acc, ok := byKey[key]; ok {
			acc.add(rec)
			continue
		}
		acc := newAccumulator(fields, rec)
		byKey[key] = acc
		order = append(order, acc)
	}

	out := make([]Record, len(order))
	for i, acc := range order {
		out[i] = acc.record()
	}
	return out
}
