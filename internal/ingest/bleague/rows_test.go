package bleague

import (
	"testing"

	"github.com/fortuna/courtside/internal/stats"
)

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		widest int
		want   Layout
	}{
		{33, LayoutVerbose},
		{30, LayoutVerbose},
		{29, LayoutCompact},
		{16, LayoutCompact},
		{15, LayoutUnknown},
		{0, LayoutUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := DetectLayout(tt.widest); got != tt.want {
				t.Errorf("DetectLayout(%d) = %v, want %v", tt.widest, got, tt.want)
			}
		})
	}
}

func TestParseVerboseRow(t *testing.T) {
	cells := []string{
		"23", "", "Yamada Taro", "", "28:15", "12", "5", "9", "55.6",
		"3", "5", "60.0", "2", "4", "50.0", "0", "0", "0.0", "", "",
		"1", "4", "5", "3", "", "2", "1", "0", "", "3", "", "", "+7",
	}
	line := ParseVerboseRow(cells, "23 〇 Yamada Taro 28:15 12")
	if line == nil {
		t.Fatal("ParseVerboseRow() = nil")
	}

	if line.Jersey != "23" || line.NameNative != "Yamada Taro" {
		t.Errorf("identity = %q %q", line.Jersey, line.NameNative)
	}
	if line.Minutes != "28:15" || line.DidNotPlay {
		t.Errorf("minutes = %q, dnp = %v", line.Minutes, line.DidNotPlay)
	}
	if !line.Starter {
		t.Error("Starter = false, want true")
	}
	if line.Points != 12 || line.Reb != 5 || line.Ast != 3 || line.TO != 2 || line.PF != 3 {
		t.Errorf("counts = pts %d reb %d ast %d to %d pf %d", line.Points, line.Reb, line.Ast, line.TO, line.PF)
	}
	if line.PlusMinus != "+7" {
		t.Errorf("PlusMinus = %q, want +7", line.PlusMinus)
	}

	d := stats.Derive(line.Shots())
	if d.FG2.Pct != 60.0 || d.FG3.Pct != 50.0 {
		t.Errorf("FG2 %.1f FG3 %.1f, want 60.0 50.0", d.FG2.Pct, d.FG3.Pct)
	}
}

func TestParseRow_Rejects(t *testing.T) {
	full := make([]string, 33)
	full[0] = "7"

	header := make([]string, 33)
	header[0] = "#"

	tests := []struct {
		name   string
		layout Layout
		cells  []string
	}{
		{"header", LayoutVerbose, header},
		{"short row", LayoutVerbose, full[:20]},
		{"team row", LayoutVerbose, append([]string{"TEAM"}, full[1:]...)},
		{"unknown layout", LayoutUnknown, full},
		{"empty", LayoutCompact, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRow(tt.layout, tt.cells, ""); got != nil {
				t.Errorf("ParseRow() = %+v, want nil", got)
			}
		})
	}
}

func TestParseVerboseRow_DidNotPlay(t *testing.T) {
	cells := verboseCells(shotLine{jersey: "11", name: "控え 選手", minutes: "DNP"})
	line := ParseVerboseRow(cells, "")
	if line == nil {
		t.Fatal("ParseVerboseRow() = nil")
	}
	if !line.DidNotPlay || line.Minutes != "DNP" {
		t.Errorf("DidNotPlay = %v, Minutes = %q", line.DidNotPlay, line.Minutes)
	}
	if line.Starter {
		t.Error("Starter = true, want false")
	}
}

func TestParseCompactRow(t *testing.T) {
	cells := []string{"8", "佐藤 一郎", "31", "9", "3", "7", "1", "2", "0", "1", "2", "3", "0", "4", "1", "2"}
	line := ParseCompactRow(cells, "")
	if line == nil {
		t.Fatal("ParseCompactRow() = nil")
	}

	if line.Minutes != "31:00" {
		t.Errorf("Minutes = %q, want 31:00", line.Minutes)
	}
	if line.FG2Made != 3 || line.FG2Attempted != 7 || line.FG3Made != 1 || line.FG3Attempted != 2 {
		t.Errorf("shots = %d/%d %d/%d", line.FG2Made, line.FG2Attempted, line.FG3Made, line.FG3Attempted)
	}
	// Total rebounds cell is 0, so it is rebuilt from the split.
	if line.Reb != 5 {
		t.Errorf("Reb = %d, want 5", line.Reb)
	}
	if line.Blk != 0 || line.PF != 0 || line.PlusMinus != "" {
		t.Errorf("optional columns = blk %d pf %d pm %q, want zero", line.Blk, line.PF, line.PlusMinus)
	}
}

func TestParseRow_ClampsAttempts(t *testing.T) {
	cells := verboseCells(shotLine{jersey: "5", name: "X", minutes: "10:00", fg2m: 4, fg2a: 4})
	cells[10] = "2"
	line := ParseVerboseRow(cells, "")
	if line.FG2Attempted != 4 {
		t.Errorf("FG2Attempted = %d, want 4", line.FG2Attempted)
	}
}

func TestIsSupplementalRow(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"TEAM / COACHES 2 3", true},
		{"Team/Coaches", true},
		{" team /\n coaches ", true},
		{"TEAM", false},
		{"23 〇 Yamada Taro", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsSupplementalRow(tt.text); got != tt.want {
				t.Errorf("IsSupplementalRow(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseSupplementalRow(t *testing.T) {
	t.Run("verbose", func(t *testing.T) {
		got := ParseSupplementalRow(LayoutVerbose, supplementalCells(2, 3, 1, 4))
		if got == nil {
			t.Fatal("ParseSupplementalRow() = nil")
		}
		if got.OffReb != 2 || got.DefReb != 3 || got.TO != 1 || got.PF != 4 {
			t.Errorf("got %+v", *got)
		}
	})

	t.Run("compact", func(t *testing.T) {
		cells := make([]string, 16)
		cells[8], cells[9], cells[12] = "1", "2", "3"
		got := ParseSupplementalRow(LayoutCompact, cells)
		if got == nil {
			t.Fatal("ParseSupplementalRow() = nil")
		}
		if got.OffReb != 1 || got.DefReb != 2 || got.TO != 3 || got.PF != 0 {
			t.Errorf("got %+v", *got)
		}
	})

	t.Run("too short", func(t *testing.T) {
		if got := ParseSupplementalRow(LayoutVerbose, make([]string, 10)); got != nil {
			t.Errorf("got %+v, want nil", *got)
		}
	})

	t.Run("truncated verbose row", func(t *testing.T) {
		// Indices 18/19/23/27 all exist, but the row is shorter than a full
		// player row.
		cells := supplementalCells(2, 3, 1, 4)[:28]
		if got := ParseSupplementalRow(LayoutVerbose, cells); got != nil {
			t.Errorf("got %+v, want nil", *got)
		}
	})

	t.Run("truncated compact row", func(t *testing.T) {
		cells := make([]string, 15)
		cells[8], cells[9] = "1", "2"
		if got := ParseSupplementalRow(LayoutCompact, cells); got != nil {
			t.Errorf("got %+v, want nil", *got)
		}
	})

	t.Run("unknown layout", func(t *testing.T) {
		if got := ParseSupplementalRow(LayoutUnknown, make([]string, 40)); got != nil {
			t.Errorf("got %+v, want nil", *got)
		}
	})
}

func TestCount(t *testing.T) {
	tests := []struct {
		cell string
		want int
	}{
		{"12", 12},
		{" 7 ", 7},
		{"45.5%", 45},
		{"1,234", 1234},
		{"+5", 5},
		{"-3", 0},
		{"", 0},
		{"-", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			if got := count([]string{tt.cell}, 0); got != tt.want {
				t.Errorf("count(%q) = %d, want %d", tt.cell, got, tt.want)
			}
		})
	}

	if got := count(nil, 3); got != 0 {
		t.Errorf("count out of range = %d, want 0", got)
	}
}
