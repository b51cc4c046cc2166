package names

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/courtside/internal/aliases"
)

func testNormalizer() *Normalizer {
	table := aliases.Empty()
	table.Players = map[string]string{
		"飯尾 文哉":        "Fumiya Iio",
		"ショーン・オマラ":     "Shawn O'mara",
		"dusan ristic": "Dusan Ristic",
	}
	return NewNormalizer(table)
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"TARO YAMADA", "Taro Yamada"},
		{"taro yamada", "Taro Yamada"},
		{"D.J. SMITH", "D.J. Smith"},
		{"C.j. mccollum", "C.J. Mccollum"},
		{"JOSH  HAWKINSON", "Josh  Hawkinson"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TitleCase(tt.input); got != tt.want {
				t.Errorf("TitleCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFileSafe(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Dušan Ristić", "DUSAN RISTIC"},
		{"Shawn O'mara", "SHAWN OMARA"},
		{"D’Angelo Russell", "DANGELO RUSSELL"},
		{"Nikola Jokić", "NIKOLA JOKIC"},
		{"Taro Yamada", "TARO YAMADA"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := FileSafe(tt.input)
			if got != tt.want {
				t.Errorf("FileSafe(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if strings.ContainsAny(got, "'’") {
				t.Errorf("FileSafe(%q) kept an apostrophe", tt.input)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name         string
		native       string
		latin        string
		wantDisplay  string
		wantFileSafe string
	}{
		{"latin found", "山田 太郎", "TARO YAMADA", "Taro Yamada", "TARO YAMADA"},
		{"latin with initial", "スミス", "D.J. SMITH", "D.J. Smith", "D.J. SMITH"},
		{"no latin keeps native verbatim", "山田 太郎", "", "山田 太郎", "山田 太郎"},
		{"no latin uppercases latin-script native", "Taro Yamada", "", "Taro Yamada", "TARO YAMADA"},
		{"exception on native with full-width space", "飯尾　文哉", "", "Fumiya Iio", "FUMIYA IIO"},
		{"exception on native without space", "飯尾文哉", "", "Fumiya Iio", "FUMIYA IIO"},
		{"exception beats title case", "ショーン・オマラ", "SHAWN O'MARA", "Shawn O'mara", "SHAWN OMARA"},
		{"exception on latin", "ドゥシャン・リスティッチ", "DUSAN RISTIC", "Dusan Ristic", "DUSAN RISTIC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Resolve(tt.native, tt.latin)
			if got.Display != tt.wantDisplay {
				t.Errorf("Display = %q, want %q", got.Display, tt.wantDisplay)
			}
			if got.FileSafe != tt.wantFileSafe {
				t.Errorf("FileSafe = %q, want %q", got.FileSafe, tt.wantFileSafe)
			}
		})
	}
}

func TestResolve_DisplayKeepsDiacritics(t *testing.T) {
	n := NewNormalizer(nil)
	got := n.Resolve("", "DUŠAN RISTIĆ")
	if got.Display != "Dušan Ristić" {
		t.Errorf("Display = %q, want diacritics kept", got.Display)
	}
	if got.FileSafe != "DUSAN RISTIC" {
		t.Errorf("FileSafe = %q, want DUSAN RISTIC", got.FileSafe)
	}
}

func TestLatin(t *testing.T) {
	n := testNormalizer()

	got := n.Latin("LeBron  James")
	if got.Display != "LeBron James" || got.FileSafe != "LEBRON JAMES" {
		t.Errorf("Latin() = %+v", got)
	}
	if got := n.Latin("Dusan Ristic"); got.Display != "Dusan Ristic" {
		t.Errorf("exception should apply, got %q", got.Display)
	}
}

func TestExtractLatinName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"terminated by japanese", "選手詳細 #23 TARO YAMADA 山田 太郎 PG", "TARO YAMADA"},
		{"stat headers trimmed", "#7 JOSH HAWKINSON PPG 12.3 RPG 8.1", "JOSH HAWKINSON"},
		{"newlines collapsed", "#0 D.J.\nSMITH\nやまだ", "D.J. SMITH"},
		{"hyphen and apostrophe", "#34 SHAWN O'MARA-LEE ショーン", "SHAWN O'MARA-LEE"},
		{"no header", "山田 太郎", ""},
		{"lower-case start rejected", "#3 yamada", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLatinName(tt.text); got != tt.want {
				t.Errorf("ExtractLatinName(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractLatinNameFromHTML(t *testing.T) {
	html := `<html><body><div class="player"><span>#23</span> <h1>TARO YAMADA</h1>
<p>山田 太郎</p></div></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse html: %v", err)
	}
	if got := ExtractLatinNameFromHTML(doc); got != "TARO YAMADA" {
		t.Errorf("ExtractLatinNameFromHTML() = %q, want TARO YAMADA", got)
	}
	if got := ExtractLatinNameFromHTML(nil); got != "" {
		t.Errorf("nil document = %q, want empty", got)
	}
}
