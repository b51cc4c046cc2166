// Package names reconciles native-script player names with latinized names
// and derives filename-safe variants.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/fortuna/courtside/internal/aliases"
)

// Name is a resolved player name. FileSafe is a storage identifier only and
// is never shown.
type Name struct {
	Display  string `json:"display"`
	FileSafe string `json:"file_safe"`
	Latin    bool   `json:"latin"`
}

var (
	initialFollower = regexp.MustCompile(`([A-Z]\.)([a-z])`)
	apostrophes     = strings.NewReplacer("'", "", "’", "", "‘", "", "`", "")
	spaces          = regexp.MustCompile(`\s+`)

	latinOnPage  = regexp.MustCompile(`#\d+\s+([A-Z][a-zA-Z\s.\-'\x{00C0}-\x{017F}]+?)(?:\s+[ぁ-んァ-ヶー一-龠]|\s+\d|$)`)
	statsHeaders = regexp.MustCompile(`\s(?:PPG|APG|RPG|BPG|SPG)`)
)

// Normalizer applies the player exception table before the generic rules.
// It is read-only after construction.
type Normalizer struct {
	exceptions map[string]string
}

// NewNormalizer indexes the players section of an alias table.
func NewNormalizer(table *aliases.Table) *Normalizer {
	n := &Normalizer{exceptions: map[string]string{}}
	if table == nil {
		return n
	}
	for variant, display := range table.Players {
		n.exceptions[exceptionKey(variant)] = display
	}
	return n
}

func exceptionKey(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func (n *Normalizer) exception(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if v, ok := n.exceptions[exceptionKey(c)]; ok {
			return v, true
		}
	}
	return "", false
}

// Resolve picks the display name for a player whose source name is native
// script and whose latinized name may or may not have been found.
func (n *Normalizer) Resolve(native, latin string) Name {
	latin = strings.TrimSpace(spaces.ReplaceAllString(latin, " "))
	native = strings.TrimSpace(native)

	if v, ok := n.exception(latin, native); ok {
		return Name{Display: v, FileSafe: FileSafe(v), Latin: true}
	}
	if latin != "" {
		display := TitleCase(latin)
		return Name{Display: display, FileSafe: FileSafe(display), Latin: true}
	}
	return Name{Display: native, FileSafe: strings.ToUpper(native)}
}

// Latin resolves a name the source already publishes in Latin script. The
// source casing is kept.
func (n *Normalizer) Latin(name string) Name {
	name = strings.TrimSpace(spaces.ReplaceAllString(name, " "))
	if v, ok := n.exception(name); ok {
		name = v
	}
	return Name{Display: name, FileSafe: FileSafe(name), Latin: name != ""}
}

// TitleCase lower-cases the name, capitalizes each space-separated token and
// re-capitalizes the letter after an initial ("D.j." becomes "D.J.").
func TitleCase(s string) string {
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	out := strings.Join(words, " ")
	return initialFollower.ReplaceAllStringFunc(out, strings.ToUpper)
}

// FileSafe decomposes the name, drops combining marks and apostrophes and
// upper-cases the rest.
func FileSafe(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(apostrophes.Replace(out))
}

// ExtractLatinName finds the "#<jersey> <Latin Name>" header in a player
// page's text and returns the name with trailing stat headers removed.
func ExtractLatinName(text string) string {
	m := latinOnPage.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	name := statsHeaders.Split(m[1], 2)[0]
	return strings.TrimSpace(spaces.ReplaceAllString(name, " "))
}

// ExtractLatinNameFromHTML runs ExtractLatinName over a player page's body.
func ExtractLatinNameFromHTML(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	return ExtractLatinName(doc.Find("body").Text())
}
