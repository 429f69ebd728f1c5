package extraction

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultIdentifierPrefix is the letter prefix of cable identifiers such as S12345
const DefaultIdentifierPrefix = "S"

var (
	// digits x digits [x digits], decimals with comma or dot: 20x1x1,4 or 3 x 2.5
	typePattern = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*[xX×]\s*\d+(?:[.,]\d+)?(?:\s*[xX×]\s*\d+(?:[.,]\d+)?)?`)

	// a magnitude in metres, optionally followed by a parenthetical note.
	// Thousands groups (1.200,5 m or 1 200 m) are consumed whole and a match
	// never starts inside a number. Group 1 is the token.
	lengthPattern = regexp.MustCompile(`(?:^|[^\w.,])((?:\d{1,3}(?:[.\s]\d{3})+(?:,\d+)?|\d+(?:[.,]\d+)?)\s?m\b(?:\s*\([^()]*\))?)`)

	parentheticalPattern = regexp.MustCompile(`\s*\([^()]*\)`)
	prefixPattern        = regexp.MustCompile(`^[A-Za-z]{1,4}$`)
)

// Patterns holds the token patterns used by the schematic strategies
type Patterns struct {
	Identifier *regexp.Regexp
	Type       *regexp.Regexp
	Length     *regexp.Regexp
}

// NewPatterns compiles the identifier pattern for prefix: the prefix, an
// optional separator, then 3 to 7 digits.
func NewPatterns(prefix string) (*Patterns, error) {
	if prefix == "" {
		prefix = DefaultIdentifierPrefix
	}
	if !prefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("identifier prefix must be 1-4 letters, got %q", prefix)
	}
	id, err := regexp.Compile(`\b` + regexp.QuoteMeta(prefix) + `[-./ ]?\d{3,7}\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile identifier pattern: %w", err)
	}
	return &Patterns{
		Identifier: id,
		Type:       typePattern,
		Length:     lengthPattern,
	}, nil
}

// MatchType returns the first dimension token in s
func (p *Patterns) MatchType(s string) (string, bool) {
	m := p.Type.FindString(s)
	return m, m != ""
}

// MatchLength returns the first length token in s with annotations stripped
func (p *Patterns) MatchLength(s string) (string, bool) {
	locs := p.LengthIndexes(s)
	if len(locs) == 0 {
		return "", false
	}
	return StripParenthetical(s[locs[0][0]:locs[0][1]]), true
}

// LengthIndexes returns the start and end of every length token in s
func (p *Patterns) LengthIndexes(s string) [][]int {
	var locs [][]int
	for _, m := range p.Length.FindAllStringSubmatchIndex(s, -1) {
		locs = append(locs, []int{m[2], m[3]})
	}
	return locs
}

// StripParenthetical removes parenthetical annotations: "1200m (Reserve)" becomes "1200m".
func StripParenthetical(s string) string {
	for {
		next := parentheticalPattern.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}
