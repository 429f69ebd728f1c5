package extraction

// MergeFields resolves each column label and appends its values under the
// canonical field.
//
// Fields in a positional group (Metr.(von) and Metr.(bis) share every
// synonym) cannot be told apart by label. Within each table the first such
// column goes to the first field of the group, the second to the next, and any
// further columns to the last field. The label itself is never consulted for
// this choice.
func MergeFields(r *Resolver, tables []*ResolvedTable) *FieldMap {
	out := NewFieldMap()
	dict := r.Dictionary()

	for _, t := range tables {
		if t == nil {
			continue
		}
		seen := make(map[string]int)
		for _, col := range t.Columns {
			field, ok := r.Resolve(col.Label)
			if !ok {
				continue
			}
			if group := dict.PositionalGroup(field); len(group) > 1 {
				k := seen[group[0]]
				seen[group[0]]++
				field = group[min(k, len(group)-1)]
			}
			out.Append(field, col.Values...)
		}
	}
	return out
}
