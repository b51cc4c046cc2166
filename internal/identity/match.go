package identity

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// minFuzzyKeyLen is the shortest normalized key allowed to take part in
// substring matching. Shorter keys ("arena", "千葉") only match exactly.
const minFuzzyKeyLen = 4

var (
	labelPrefix = regexp.MustCompile(`(?i)venue\s*:|会場\s*[:：]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// CleanLabel strips venue label prefixes and collapses whitespace.
func CleanLabel(raw string) string {
	s := labelPrefix.ReplaceAllString(raw, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Normalize is the comparison form of a name: NFKC-folded, whitespace
// removed, lower-cased.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Candidate is one alias-table row prepared for matching.
type Candidate struct {
	Key   string
	Value string

	normKey   string
	normValue string
}

// Table is an alias table sorted longest key first.
type Table struct {
	candidates []Candidate
}

// NewTable prepares an alias map for matching. Ties in key length are broken
// by key so the order never depends on map iteration.
func NewTable(entries map[string]string) *Table {
	t := &Table{candidates: make([]Candidate, 0, len(entries))}
	for k, v := range entries {
		t.candidates = append(t.candidates, Candidate{
			Key:       k,
			Value:     v,
			normKey:   Normalize(k),
			normValue: Normalize(v),
		})
	}
	sort.SliceStable(t.candidates, func(i, j int) bool {
		li := utf8.RuneCountInString(t.candidates[i].normKey)
		lj := utf8.RuneCountInString(t.candidates[j].normKey)
		if li != lj {
			return li > lj
		}
		return t.candidates[i].Key < t.candidates[j].Key
	})
	return t
}

// Len returns the number of aliases.
func (t *Table) Len() int {
	return len(t.candidates)
}

// Strategy tries to resolve normalized input against a table.
type Strategy func(input string, t *Table) (Candidate, bool)

// DefaultStrategies is exact match first, then guarded substring match.
var DefaultStrategies = []Strategy{ExactMatch, SubstringMatch}

// ExactMatch accepts a key whose normalized form, or whose normalized
// canonical value, equals the input.
func ExactMatch(input string, t *Table) (Candidate, bool) {
	if input == "" {
		return Candidate{}, false
	}
	for _, c := range t.candidates {
		if input == c.normKey || input == c.normValue {
			return c, true
		}
	}
	return Candidate{}, false
}

// SubstringMatch accepts the first key that contains, or is contained in,
// the input. Keys shorter than minFuzzyKeyLen are skipped unless equal to
// the input.
func SubstringMatch(input string, t *Table) (Candidate, bool) {
	if input == "" {
		return Candidate{}, false
	}
	for _, c := range t.candidates {
		if c.normKey == "" {
			continue
		}
		if utf8.RuneCountInString(c.normKey) < minFuzzyKeyLen && input != c.normKey {
			continue
		}
		if strings.Contains(input, c.normKey) || strings.Contains(c.normKey, input) {
			return c, true
		}
	}
	return Candidate{}, false
}

// Lookup runs the strategies in order on the cleaned, normalized raw name
// and returns the first hit.
func (t *Table) Lookup(raw string, strategies ...Strategy) (Candidate, bool) {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	input := Normalize(CleanLabel(raw))
	for _, s := range strategies {
		if c, ok := s(input, t); ok {
			return c, true
		}
	}
	return Candidate{}, false
}
