package extraction

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSimilarityThreshold is the minimum ratio for an approximate header match
const DefaultSimilarityThreshold = 0.7

// TieBreak selects among several fields that clear the similarity threshold
type TieBreak int

const (
	// TieBreakBestScore picks the most similar field, dictionary order breaking exact ties
	TieBreakBestScore TieBreak = iota
	// TieBreakFirstAboveThreshold picks the first field in dictionary order that clears the threshold
	TieBreakFirstAboveThreshold
)

// ParseTieBreak maps "best" and "first" to a TieBreak
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "best":
		return TieBreakBestScore, nil
	case "first":
		return TieBreakFirstAboveThreshold, nil
	default:
		return TieBreakBestScore, fmt.Errorf("unknown tie-break %q (must be best or first)", s)
	}
}

func (t TieBreak) String() string {
	if t == TieBreakFirstAboveThreshold {
		return "first"
	}
	return "best"
}

// ResolverOptions tune header resolution
type ResolverOptions struct {
	// Strict drops every character that is not a letter or digit before comparing
	Strict    bool
	Threshold float64
	TieBreak  TieBreak
}

// DefaultResolverOptions returns the standard resolver settings
func DefaultResolverOptions() ResolverOptions {
	return ResolverOptions{
		Threshold: DefaultSimilarityThreshold,
		TieBreak:  TieBreakBestScore,
	}
}

type resolverEntry struct {
	field      string
	candidates [][]string
}

// Resolver maps header text to canonical field names. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	dict    *Dictionary
	opts    ResolverOptions
	exact   map[string]string
	entries []resolverEntry
}

// NewResolver prepares a resolver for dict
func NewResolver(dict *Dictionary, opts ResolverOptions) *Resolver {
	if dict == nil {
		dict = DefaultDictionary()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultSimilarityThreshold
	}

	r := &Resolver{
		dict:  dict,
		opts:  opts,
		exact: make(map[string]string),
	}
	for _, f := range dict.fields {
		entry := resolverEntry{field: f.Name}
		for _, s := range append([]string{f.Name}, f.Synonyms...) {
			n := Normalize(s, opts.Strict)
			if n == "" {
				continue
			}
			if _, taken := r.exact[n]; !taken {
				r.exact[n] = f.Name
			}
			entry.candidates = append(entry.candidates, splitChars(n))
		}
		r.entries = append(r.entries, entry)
	}
	return r
}

// Dictionary returns the dictionary the resolver was built from
func (r *Resolver) Dictionary() *Dictionary {
	return r.dict
}

// Options returns the resolver settings
func (r *Resolver) Options() ResolverOptions {
	return r.opts
}

// ResolveExact matches text against the canonical names and synonyms literally,
// after normalization.
func (r *Resolver) ResolveExact(text string) (string, bool) {
	n := Normalize(text, r.opts.Strict)
	if n == "" {
		return "", false
	}
	field, ok := r.exact[n]
	return field, ok
}

// Resolve maps text to a canonical field. A literal match always wins; otherwise
// the approximate match must reach the similarity threshold.
func (r *Resolver) Resolve(text string) (string, bool) {
	n := Normalize(text, r.opts.Strict)
	if n == "" {
		return "", false
	}
	if field, ok := r.exact[n]; ok {
		return field, true
	}

	chars := splitChars(n)
	best, bestScore := "", 0.0
	for _, e := range r.entries {
		score := 0.0
		for _, c := range e.candidates {
			if s := similarity(c, chars); s > score {
				score = s
			}
		}
		if score < r.opts.Threshold {
			continue
		}
		if r.opts.TieBreak == TieBreakFirstAboveThreshold {
			return e.field, true
		}
		if score > bestScore {
			best, bestScore = e.field, score
		}
	}
	return best, best != ""
}

// ScoreRow counts the cells of row that resolve to a canonical field
func (r *Resolver) ScoreRow(row []string) int {
	score := 0
	for _, cell := range row {
		if _, ok := r.Resolve(cell); ok {
			score++
		}
	}
	return score
}

// Normalize trims, lowercases, folds diacritics and collapses inner whitespace.
// In strict mode everything except letters and digits is removed as well.
func Normalize(text string, strict bool) string {
	s := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	if strict {
		s = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, s)
	}
	return s
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// similarity is the SequenceMatcher ratio 2*M/T over characters
func similarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	return difflib.NewMatcher(a, b).Ratio()
}
