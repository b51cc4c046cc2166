package boxscore

import "github.com/fortuna/courtside/internal/store"

// Supplemental holds the figures a source credits to the team as a whole
// rather than to any player.
type Supplemental struct {
	OffReb int `json:"off_reb"`
	DefReb int `json:"def_reb"`
	TO     int `json:"to"`
	PF     int `json:"pf"`
}

// Aggregate sums the playing lines of one side and adds the supplemental
// team figures on top. Team rebounds come from the offensive/defensive
// split only; a player's printed total never adds to either side of it.
// Lines are normalized on a copy; the input is not modified.
func Aggregate(lines []store.RawPlayerLine, sup *Supplemental) store.TeamTotals {
	var t store.TeamTotals

	for _, line := range lines {
		l := line
		l.Normalize()
		if !l.Playing() {
			continue
		}
		t.Points += l.Points
		t.FG2Made += l.FG2Made
		t.FG2Attempted += l.FG2Attempted
		t.FG3Made += l.FG3Made
		t.FG3Attempted += l.FG3Attempted
		t.FTMade += l.FTMade
		t.FTAttempted += l.FTAttempted
		t.OffReb += l.OffReb
		t.DefReb += l.DefReb
		t.Ast += l.Ast
		t.TO += l.TO
		t.Stl += l.Stl
		t.Blk += l.Blk
		t.PF += l.PF
	}

	if sup != nil {
		t.OffReb += sup.OffReb
		t.DefReb += sup.DefReb
		t.TO += sup.TO
		t.PF += sup.PF
	}

	t.Reb = t.OffReb + t.DefReb
	return t
}

// ReconcileRebounds applies a source-printed team rebound total. A non-zero
// explicit total wins: the difference is applied to defensive rebounds first,
// then offensive, and neither goes below zero. Reb stays equal to
// OffReb + DefReb.
func ReconcileRebounds(t store.TeamTotals, explicit int) store.TeamTotals {
	if explicit <= 0 {
		t.Reb = t.OffReb + t.DefReb
		return t
	}

	diff := explicit - (t.OffReb + t.DefReb)
	switch {
	case diff > 0:
		t.DefReb += diff
	case diff < 0:
		take := min(-diff, t.DefReb)
		t.DefReb -= take
		diff += take
		if diff < 0 {
			t.OffReb -= min(-diff, t.OffReb)
		}
	}

	t.Reb = t.OffReb + t.DefReb
	return t
}
