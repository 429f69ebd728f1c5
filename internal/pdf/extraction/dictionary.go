package extraction

import (
	"slices"
	"strings"
)

// Canonical field names
const (
	FieldKabelnummer   = "Kabelnummer"
	FieldKabeltyp      = "Kabeltyp"
	FieldDurchmesser   = "Ømm"
	FieldTrommelnummer = "Trommelnummer"
	FieldVonOrt        = "von Ort"
	FieldVonKm         = "von km"
	FieldMetrVon       = "Metr.(von)"
	FieldBisOrt        = "bis Ort"
	FieldBisKm         = "bis km"
	FieldMetrBis       = "Metr.(bis)"
	FieldSoll          = "SOLL"
	FieldIst           = "IST"
	FieldVerlegeart    = "Verlegeart"
	FieldBemerkung     = "Bemerkung"
)

// Field is a canonical output column and the header spellings that map to it
type Field struct {
	Name     string
	Synonyms []string
}

// Dictionary is an immutable, ordered set of canonical fields. Order matters:
// it breaks ties between equally similar fields and defines which member of
// a positional group comes first.
type Dictionary struct {
	fields []Field
	groups map[string][]string
}

var meterSynonyms = []string{"metr", "meter", "metr.", "Metr."}

var defaultFields = []Field{
	{FieldKabelnummer, []string{
		"kabelnummer", "kabel-nummer", "Kabel-nummer", "Kabel-Nummer",
		"Kabel-Nr", "Kabel-Nr.", "Kabel-nr", "Kabel-nr.", "kabel-nr", "kabel-nr.",
	}},
	{FieldKabeltyp, []string{"kabeltyp", "typ", "Kabeltype", "Kabel-type", "Kabel-Type"}},
	{FieldDurchmesser, []string{
		"durchmesser", "ø", "Ø", "ømm", "mm",
		"Durchmesser in mm", "durchmesser in mm", "Durch-messer in mm", "durch-messer in mm",
	}},
	{FieldTrommelnummer, []string{"Trommel", "trommelnummer", "Trommel-nummer"}},
	{FieldVonOrt, []string{"von ort", "start ort"}},
	{FieldVonKm, []string{"von km", "start km", "anfang km"}},
	{FieldMetrVon, meterSynonyms},
	{FieldBisOrt, []string{"bis ort", "ziel ort", "end ort"}},
	{FieldBisKm, []string{"bis km", "ziel km", "end km"}},
	{FieldMetrBis, meterSynonyms},
	{FieldSoll, []string{"soll", "sollwert", "soll m"}},
	{FieldIst, []string{"ist", "istwert", "ist m"}},
	{FieldVerlegeart, []string{"verlegeart", "verlegung", "verlegungsart"}},
	{FieldBemerkung, []string{
		"Bemerkungen", "bemerkung", "bemerkungen", "notiz",
		"kommentar", "Kommentar", "Anmerkung", "anmerkung",
	}},
}

// DefaultDictionary returns the cable-list header dictionary
func DefaultDictionary() *Dictionary {
	return NewDictionary(defaultFields)
}

// NewDictionary builds a dictionary from fields. Fields whose synonym sets
// are identical after lowercasing form a positional group: their columns can
// only be told apart by the order in which they appear.
func NewDictionary(fields []Field) *Dictionary {
	d := &Dictionary{
		fields: make([]Field, len(fields)),
		groups: make(map[string][]string),
	}
	keys := make([]string, len(fields))
	for i, f := range fields {
		d.fields[i] = Field{Name: f.Name, Synonyms: slices.Clone(f.Synonyms)}
		keys[i] = synonymKey(f.Synonyms)
	}

	for i, f := range d.fields {
		var group []string
		for j, other := range d.fields {
			if keys[j] == keys[i] {
				group = append(group, other.Name)
			}
		}
		d.groups[f.Name] = group
	}
	return d
}

func synonymKey(synonyms []string) string {
	set := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		s = strings.ToLower(strings.TrimSpace(s))
		if !slices.Contains(set, s) {
			set = append(set, s)
		}
	}
	slices.Sort(set)
	return strings.Join(set, "\x00")
}

// Fields returns a copy of the dictionary entries in order
func (d *Dictionary) Fields() []Field {
	out := make([]Field, len(d.fields))
	for i, f := range d.fields {
		out[i] = Field{Name: f.Name, Synonyms: slices.Clone(f.Synonyms)}
	}
	return out
}

// Names returns the canonical field names in order
func (d *Dictionary) Names() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.Name
	}
	return names
}

// PositionalGroup returns the fields sharing name's synonym set, in
// dictionary order. A field without twins is a group of one.
func (d *Dictionary) PositionalGroup(name string) []string {
	if g, ok := d.groups[name]; ok {
		return slices.Clone(g)
	}
	return []string{name}
}
