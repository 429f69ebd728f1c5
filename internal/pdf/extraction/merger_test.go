package extraction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFields_MeteringColumnsByPosition(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		wantVon []string
		wantBis []string
	}{
		{
			name:    "first column is von, second is bis",
			labels:  []string{"Metr.", "SOLL", "Meter"},
			wantVon: []string{"c0"},
			wantBis: []string{"c2"},
		},
		{
			name:    "labels are ignored",
			labels:  []string{"Metr.(bis)", "Metr.(von)"},
			wantVon: []string{"c0"},
			wantBis: []string{"c1"},
		},
		{
			name:    "extra columns go to bis",
			labels:  []string{"Metr.", "Metr._1", "Metr._2"},
			wantVon: []string{"c0"},
			wantBis: []string{"c1", "c2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &ResolvedTable{}
			for i, l := range tt.labels {
				table.Columns = append(table.Columns, Column{Label: l, Values: []string{"c" + string(rune('0'+i))}})
			}
			fm := MergeFields(defaultResolver(), []*ResolvedTable{table})
			assert.Equal(t, tt.wantVon, fm.Get(FieldMetrVon))
			assert.Equal(t, tt.wantBis, fm.Get(FieldMetrBis))
		})
	}
}

func TestMergeFields_PositionResetsPerTable(t *testing.T) {
	t1 := &ResolvedTable{Columns: []Column{{Label: "Metr.", Values: []string{"a"}}}}
	t2 := &ResolvedTable{Columns: []Column{{Label: "Metr.", Values: []string{"b"}}}}

	fm := MergeFields(defaultResolver(), []*ResolvedTable{t1, nil, t2})
	assert.Equal(t, []string{"a", "b"}, fm.Get(FieldMetrVon))
	assert.False(t, fm.Has(FieldMetrBis))
}

func TestMergeFields_SkipsUnresolvedAndConcatenates(t *testing.T) {
	t1 := &ResolvedTable{Columns: []Column{
		{Label: "Kabelnummer", Values: []string{"S1", "S2"}},
		{Label: "Spalte_2", Values: []string{"x", "y"}},
	}}
	t2 := &ResolvedTable{Columns: []Column{
		{Label: "Kabel-Nr", Values: []string{"S3"}},
		{Label: "IST", Values: []string{}},
	}}

	fm := MergeFields(defaultResolver(), []*ResolvedTable{t1, t2})
	assert.Equal(t, []string{FieldKabelnummer, FieldIst}, fm.Fields())
	assert.Equal(t, []string{"S1", "S2", "S3"}, fm.Get(FieldKabelnummer))
	assert.Empty(t, fm.Get(FieldIst))
	assert.Equal(t, 3, fm.TotalValues())
}

func TestFieldMap_MarshalKeepsOrder(t *testing.T) {
	fm := NewFieldMap()
	fm.Append(FieldSoll, "10")
	fm.Append(FieldKabelnummer, "S1")
	fm.Append(FieldSoll, "20")

	data, err := json.Marshal(fm)
	require.NoError(t, err)
	assert.Equal(t, `{"SOLL":["10","20"],"Kabelnummer":["S1"]}`, string(data))

	other := NewFieldMap()
	other.Append(FieldKabelnummer, "S2")
	other.Append(FieldIst)
	fm.Merge(other)
	assert.Equal(t, []string{"S1", "S2"}, fm.Get(FieldKabelnummer))
	assert.True(t, fm.Has(FieldIst))
}
