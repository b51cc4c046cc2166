package bleague

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/store"
)

// ErrNoTables is returned when a stats page has no box-score table.
var ErrNoTables = errors.New("no box-score tables found")

var (
	breadcrumbDate = regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`)
	leagueType     = regexp.MustCompile(`B[1-3]`)
	digits         = regexp.MustCompile(`\d+`)
	roundFallback  = regexp.MustCompile(`第\s*(\d+)\s*節`)
	attendanceNum  = regexp.MustCompile(`[\d,]+`)
)

// Row is one table row as rendered text.
type Row struct {
	Cells []string
	Text  string
	Link  string
}

// Table is one team's stats table.
type Table struct {
	Rows   []Row
	Layout Layout
}

// StatsPage is the content of the stats tab.
type StatsPage struct {
	HomeName string
	AwayName string
	Home     Table
	Away     Table
}

// GameInfo is the content of the game summary tab.
type GameInfo struct {
	Date       string
	LeagueType string
	Round      string
	VenueRaw   string
	Attendance int
}

// ExtractTables returns the first two tables that look like box scores
// (their text contains "MIN"), with the layout detected per table.
func ExtractTables(doc *goquery.Document) []Table {
	var tables []Table
	doc.Find("table").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if !strings.Contains(s.Text(), "MIN") {
			return true
		}
		tables = append(tables, readTable(s))
		return len(tables) < 2
	})
	return tables
}

func readTable(s *goquery.Selection) Table {
	var t Table
	widest := 0
	s.Find("tr").Each(func(i int, tr *goquery.Selection) {
		row := Row{Text: tr.Text()}
		tr.Find("td, th").Each(func(j int, td *goquery.Selection) {
			row.Cells = append(row.Cells, strings.TrimSpace(td.Text()))
		})
		if href, ok := tr.Find("a").First().Attr("href"); ok {
			row.Link = strings.TrimSpace(href)
		}
		if len(row.Cells) > widest {
			widest = len(row.Cells)
		}
		t.Rows = append(t.Rows, row)
	})
	t.Layout = DetectLayout(widest)
	return t
}

// ParseStatsPage reads team names and the two box-score tables.
func ParseStatsPage(doc *goquery.Document) (*StatsPage, error) {
	tables := ExtractTables(doc)
	if len(tables) == 0 {
		return nil, ErrNoTables
	}

	page := &StatsPage{Home: tables[0]}
	if len(tables) > 1 {
		page.Away = tables[1]
	}
	doc.Find(".team-name").Each(func(i int, s *goquery.Selection) {
		switch i {
		case 0:
			page.HomeName = strings.TrimSpace(s.Text())
		case 1:
			page.AwayName = strings.TrimSpace(s.Text())
		}
	})
	return page, nil
}

// ParseSide turns a table into player lines and the supplemental team row.
func ParseSide(t Table) ([]store.RawPlayerLine, *boxscore.Supplemental) {
	var lines []store.RawPlayerLine
	var sup *boxscore.Supplemental

	for _, row := range t.Rows {
		if IsSupplementalRow(row.Text) {
			if s := ParseSupplementalRow(t.Layout, row.Cells); s != nil {
				sup = s
			}
			continue
		}
		line := ParseRow(t.Layout, row.Cells, row.Text)
		if line == nil {
			continue
		}
		line.DetailURL = row.Link
		lines = append(lines, *line)
	}
	return lines, sup
}

// ParseInfoPage reads the game summary tab.
func ParseInfoPage(doc *goquery.Document) GameInfo {
	breadcrumb := doc.Find(".breadcrumb-list").First()
	if breadcrumb.Length() == 0 {
		breadcrumb = doc.Find(".breadcrumb").First()
	}
	return ParseGameInfo(
		breadcrumb.Text(),
		doc.Find(".game-top .time-wrap p.part").First().Text(),
		doc.Find(".attendance").First().Text(),
		doc.Find(".stadium-name").First().Text(),
	)
}

// ParseGameInfo extracts date, league, round, venue and attendance from the
// raw label texts. Missing values get the store's missing markers.
func ParseGameInfo(breadcrumb, schedule, attendance, venue string) GameInfo {
	info := GameInfo{
		Date:       store.DateMissing,
		LeagueType: store.LeagueMissing,
		Round:      store.RoundMissing,
		VenueRaw:   strings.TrimSpace(venue),
	}

	if m := breadcrumbDate.FindStringSubmatch(breadcrumb); m != nil {
		info.Date = fmt.Sprintf("%s.%s.%s", m[1], pad2(m[2]), pad2(m[3]))
	}
	if m := leagueType.FindString(breadcrumb); m != "" {
		info.LeagueType = m
	}

	if strings.TrimSpace(schedule) != "" {
		if m := digits.FindString(schedule); m != "" {
			info.Round = "ROUND" + m
		}
	} else if m := roundFallback.FindStringSubmatch(breadcrumb); m != nil {
		info.Round = "ROUND" + m[1]
	}

	if m := attendanceNum.FindString(attendance); m != "" {
		info.Attendance, _ = strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	}
	return info
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// BuildInput combines both tabs into assembler input.
func BuildInput(gameID string, info GameInfo, page *StatsPage) boxscore.Input {
	homeLines, homeSup := ParseSide(page.Home)
	awayLines, awaySup := ParseSide(page.Away)

	return boxscore.Input{
		League:     store.LeagueBLeague,
		GameID:     gameID,
		Date:       info.Date,
		LeagueType: info.LeagueType,
		Round:      info.Round,
		VenueRaw:   info.VenueRaw,
		Attendance: info.Attendance,
		Home:       boxscore.Side{NameRaw: page.HomeName, Lines: homeLines, Supplemental: homeSup},
		Away:       boxscore.Side{NameRaw: page.AwayName, Lines: awayLines, Supplemental: awaySup},
	}
}
