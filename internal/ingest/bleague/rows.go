package bleague

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/store"
)

// Layout is the column shape of a stats table.
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutCompact
	LayoutVerbose
)

func (l Layout) String() string {
	switch l {
	case LayoutCompact:
		return "compact"
	case LayoutVerbose:
		return "verbose"
	default:
		return "unknown"
	}
}

// StarterMark is the glyph the league site prints next to starters.
const StarterMark = "〇"

// columns is the index contract of one layout. Indices past minCells are
// optional and read as empty when the row is short.
type columns struct {
	minCells  int
	jersey    int
	name      int
	minutes   int
	points    int
	fg2Made   int
	fg2Att    int
	fg3Made   int
	fg3Att    int
	ftMade    int
	ftAtt     int
	offReb    int
	defReb    int
	reb       int
	ast       int
	to        int
	stl       int
	blk       int
	pf        int
	plusMinus int
}

var (
	// Stats tab: separate percentage columns after each shot pair.
	verboseColumns = columns{
		minCells:  30,
		jersey:    0,
		name:      2,
		minutes:   4,
		points:    5,
		fg2Made:   9,
		fg2Att:    10,
		fg3Made:   12,
		fg3Att:    13,
		ftMade:    15,
		ftAtt:     16,
		offReb:    20,
		defReb:    21,
		reb:       22,
		ast:       23,
		to:        25,
		stl:       26,
		blk:       27,
		pf:        29,
		plusMinus: 32,
	}

	// Summary tables: no percentage columns, trailing columns optional.
	compactColumns = columns{
		minCells:  16,
		jersey:    0,
		name:      1,
		minutes:   2,
		points:    3,
		fg2Made:   4,
		fg2Att:    5,
		fg3Made:   6,
		fg3Att:    7,
		ftMade:    8,
		ftAtt:     9,
		offReb:    10,
		defReb:    11,
		reb:       12,
		ast:       13,
		to:        14,
		stl:       15,
		blk:       16,
		pf:        17,
		plusMinus: 18,
	}

	layouts = map[Layout]columns{
		LayoutVerbose: verboseColumns,
		LayoutCompact: compactColumns,
	}

	// The "TEAM / COACHES" label spans two merged cells, so its figures sit
	// two columns left of the player-row positions.
	supplementalShift = 2

	jerseyPattern  = regexp.MustCompile(`^\d+$`)
	leadingInteger = regexp.MustCompile(`^[-+]?\d+`)
)

// DetectLayout picks the layout for a table from its widest row.
func DetectLayout(widest int) Layout {
	switch {
	case widest >= verboseColumns.minCells:
		return LayoutVerbose
	case widest >= compactColumns.minCells:
		return LayoutCompact
	default:
		return LayoutUnknown
	}
}

// ParseRow parses one table row with the given layout. It returns nil for
// rows shorter than the layout minimum or without a numeric jersey, which
// filters header, footer and team rows.
func ParseRow(layout Layout, cells []string, rowText string) *store.RawPlayerLine {
	switch layout {
	case LayoutVerbose:
		return ParseVerboseRow(cells, rowText)
	case LayoutCompact:
		return ParseCompactRow(cells, rowText)
	default:
		return nil
	}
}

// ParseVerboseRow parses a row of the full stats table.
func ParseVerboseRow(cells []string, rowText string) *store.RawPlayerLine {
	return parseWith(verboseColumns, cells, rowText)
}

// ParseCompactRow parses a row of the compact summary table.
func ParseCompactRow(cells []string, rowText string) *store.RawPlayerLine {
	return parseWith(compactColumns, cells, rowText)
}

func parseWith(c columns, cells []string, rowText string) *store.RawPlayerLine {
	if len(cells) < c.minCells {
		return nil
	}
	jersey := strings.TrimSpace(cells[c.jersey])
	if !jerseyPattern.MatchString(jersey) {
		return nil
	}
	if rowText == "" {
		rowText = strings.Join(cells, " ")
	}

	minutes, played := boxscore.NormalizeMinutes(cell(cells, c.minutes))
	if !played {
		minutes = strings.TrimSpace(cell(cells, c.minutes))
	}

	line := &store.RawPlayerLine{
		Jersey:       jersey,
		NameNative:   strings.TrimSpace(cell(cells, c.name)),
		Minutes:      minutes,
		Points:       count(cells, c.points),
		FG2Made:      count(cells, c.fg2Made),
		FG2Attempted: count(cells, c.fg2Att),
		FG3Made:      count(cells, c.fg3Made),
		FG3Attempted: count(cells, c.fg3Att),
		FTMade:       count(cells, c.ftMade),
		FTAttempted:  count(cells, c.ftAtt),
		OffReb:       count(cells, c.offReb),
		DefReb:       count(cells, c.defReb),
		Reb:          count(cells, c.reb),
		Ast:          count(cells, c.ast),
		TO:           count(cells, c.to),
		Stl:          count(cells, c.stl),
		Blk:          count(cells, c.blk),
		PF:           count(cells, c.pf),
		PlusMinus:    strings.TrimSpace(cell(cells, c.plusMinus)),
		Starter:      IsStarter(rowText),
		DidNotPlay:   !played,
	}
	line.Normalize()
	return line
}

// IsStarter reports whether the row's rendered text carries the starter mark.
func IsStarter(rowText string) bool {
	return strings.Contains(rowText, StarterMark)
}

// IsSupplementalRow reports whether a row is the "TEAM / COACHES" row that
// carries team-credited figures.
func IsSupplementalRow(rowText string) bool {
	compact := strings.Join(strings.Fields(strings.ToUpper(rowText)), "")
	return strings.Contains(compact, "TEAM/COACHES")
}

// ParseSupplementalRow reads the team-credited rebounds, turnovers and fouls
// from the supplemental row. It returns nil when the row is shorter than a
// full player row of the layout.
func ParseSupplementalRow(layout Layout, cells []string) *boxscore.Supplemental {
	c, ok := layouts[layout]
	if !ok || len(cells) < c.minCells {
		return nil
	}
	return &boxscore.Supplemental{
		OffReb: count(cells, c.offReb-supplementalShift),
		DefReb: count(cells, c.defReb-supplementalShift),
		TO:     count(cells, c.to-supplementalShift),
		PF:     count(cells, c.pf-supplementalShift),
	}
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// count parses a counting stat. Percent signs, plus signs and thousands
// separators are ignored and anything unparseable is 0.
func count(cells []string, i int) int {
	s := strings.TrimSpace(cell(cells, i))
	s = strings.NewReplacer("%", "", ",", "").Replace(s)
	m := leadingInteger.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(m, "+"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
