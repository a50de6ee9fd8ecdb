package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	f, ok := Lookup(BillOfEntry, "importer_name")
	require.True(t, ok)
	assert.Equal(t, "importer_name", f.Name)
	assert.True(t, f.Required)

	f, ok = Lookup(BillOfEntry, "  ASSESSABLE_VALUE ")
	require.True(t, ok)
	assert.Equal(t, KindAmount, f.Kind)
	assert.Equal(t, MergeSum, f.Merge)

	_, ok = Lookup(BillOfEntry, "no_such_field")
	assert.False(t, ok)
}

func TestNames(t *testing.T) {
	names := Names(BillOfEntry)
	require.Len(t, names, len(BillOfEntry))
	assert.Equal(t, "sr_no", names[0])
	assert.Contains(t, names, "cha_details")
}

func TestBillOfEntryConsistency(t *testing.T) {
	seen := make(map[string]struct{}, len(BillOfEntry))
	for _, f := range BillOfEntry {
		_, dup := seen[f.Name]
		assert.Falsef(t, dup, "duplicate field name %q", f.Name)
		seen[f.Name] = struct{}{}

		if f.Merge == MergeSum {
			assert.Equalf(t, KindAmount, f.Kind, "summed field %q must be an amount", f.Name)
		}
	}

	_, ok := Lookup(BillOfEntry, GroupKeyField)
	assert.True(t, ok)
	_, ok = Lookup(BillOfEntry, NameField)
	assert.True(t, ok)
}
