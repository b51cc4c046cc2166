package bleague

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

type shotLine struct {
	jersey, name, minutes string
	starter               bool
	fg2m, fg2a            int
	fg3m, fg3a            int
	ftm, fta              int
	oreb, dreb, ast       int
}

func (s shotLine) points() int {
	return 2*s.fg2m + 3*s.fg3m + s.ftm
}

// verboseCells lays a line out in the 33-column stats-tab shape.
func verboseCells(s shotLine) []string {
	cells := make([]string, 33)
	mark := ""
	if s.starter {
		mark = StarterMark
	}
	itoa := strconv.Itoa
	cells[0] = s.jersey
	cells[1] = mark
	cells[2] = s.name
	cells[4] = s.minutes
	cells[5] = itoa(s.points())
	cells[6] = itoa(s.fg2m + s.fg3m)
	cells[7] = itoa(s.fg2a + s.fg3a)
	cells[9] = itoa(s.fg2m)
	cells[10] = itoa(s.fg2a)
	cells[11] = "0.0%"
	cells[12] = itoa(s.fg3m)
	cells[13] = itoa(s.fg3a)
	cells[15] = itoa(s.ftm)
	cells[16] = itoa(s.fta)
	cells[20] = itoa(s.oreb)
	cells[21] = itoa(s.dreb)
	cells[22] = itoa(s.oreb + s.dreb)
	cells[23] = itoa(s.ast)
	cells[32] = "+3"
	return cells
}

// supplementalCells is a TEAM / COACHES row: the label spans two columns so
// the figures sit two positions left.
func supplementalCells(oreb, dreb, to, pf int) []string {
	cells := make([]string, 31)
	cells[0] = "TEAM / COACHES"
	cells[18] = strconv.Itoa(oreb)
	cells[19] = strconv.Itoa(dreb)
	cells[23] = strconv.Itoa(to)
	cells[27] = strconv.Itoa(pf)
	return cells
}

func rowHTML(cells []string, link string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for i, c := range cells {
		if i == 2 && link != "" {
			fmt.Fprintf(&b, `<td><a href="%s">%s</a></td>`, link, c)
			continue
		}
		fmt.Fprintf(&b, "<td>%s</td>", c)
	}
	b.WriteString("</tr>")
	return b.String()
}

func tableHTML(rows ...string) string {
	return `<table><tr><th>#</th><th></th><th>PLAYER</th><th></th><th>MIN</th><th>PTS</th></tr>` +
		strings.Join(rows, "") + `</table>`
}

func statsPageHTML(home, away string, homeTable, awayTable string) string {
	return fmt.Sprintf(`<html><body>
<div class="team-name">%s</div><div class="team-name">%s</div>
<table><tr><td>Quarter</td><td>1</td></tr></table>
%s
%s
</body></html>`, home, away, homeTable, awayTable)
}

const infoPageHTML = `<html><body>
<ul class="breadcrumb-list"><li>TOP</li><li>B1 リーグ戦</li><li>2025/10/4 千葉J vs 琉球</li></ul>
<div class="game-top"><div class="time-wrap"><p class="part">第1節</p></div></div>
<p class="attendance">入場者数：5,123人</p>
<p class="stadium-name">会場：船橋アリーナ</p>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := ParseHTML(html)
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}
	return doc
}

// fakeFetcher serves pages from memory and records player-page requests.
type fakeFetcher struct {
	tabs        map[int]string
	players     map[string]string
	tabErr      map[int]error
	playerCalls []string
}

func (f *fakeFetcher) FetchGamePage(ctx context.Context, gameID string, tab int) (*goquery.Document, error) {
	if err := f.tabErr[tab]; err != nil {
		return nil, err
	}
	html, ok := f.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("tab %d not found", tab)
	}
	return ParseHTML(html)
}

func (f *fakeFetcher) FetchPlayerPage(ctx context.Context, link string) (*goquery.Document, error) {
	f.playerCalls = append(f.playerCalls, link)
	html, ok := f.players[link]
	if !ok {
		return nil, fmt.Errorf("player page %s not found", link)
	}
	return ParseHTML(html)
}
