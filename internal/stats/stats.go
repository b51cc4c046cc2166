// Package stats computes shooting splits and point/attempt distribution
// ratios from made/attempted counts. Every function is pure and returns 0
// when its denominator is 0.
package stats

import "math"

// Split is a made/attempted/percentage triple for one shot category.
type Split struct {
	Made      int     `json:"made"`
	Attempted int     `json:"attempted"`
	Pct       float64 `json:"pct"`
}

// ShotCounts holds made/attempted pairs with two-pointers already separated
// from three-pointers.
type ShotCounts struct {
	TwoMade        int
	TwoAttempted   int
	ThreeMade      int
	ThreeAttempted int
	FTMade         int
	FTAttempted    int
}

// Derived is the full set of shooting figures for a player or a team.
type Derived struct {
	FG  Split `json:"fg"`
	FG2 Split `json:"fg2"`
	FG3 Split `json:"fg3"`
	FT  Split `json:"ft"`

	PtsRatio2P int `json:"pts_ratio_2p"`
	PtsRatio3P int `json:"pts_ratio_3p"`
	PtsRatioFT int `json:"pts_ratio_ft"`
	AttRatio2P int `json:"att_ratio_2p"`
	AttRatio3P int `json:"att_ratio_3p"`

	TrueShootingPct float64 `json:"true_shooting_pct"`
	EffectiveFGPct  float64 `json:"effective_fg_pct"`

	// Team lines only.
	Possessions     float64 `json:"possessions,omitempty"`
	OffensiveRating float64 `json:"offensive_rating,omitempty"`
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Pct returns 100*made/attempted rounded to one decimal, or 0 when nothing
// was attempted.
func Pct(made, attempted int) float64 {
	if attempted <= 0 {
		return 0
	}
	return Round1(100 * float64(made) / float64(attempted))
}

// Ratio returns part/total as a whole-number percentage, or 0 when total is 0.
func Ratio(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

// NewSplit builds a Split for one shot category.
func NewSplit(made, attempted int) Split {
	return Split{Made: made, Attempted: attempted, Pct: Pct(made, attempted)}
}

// TwoPointFromCombined separates two-pointers out of combined field-goal
// figures. Negative results (inconsistent feeds) clamp to 0.
func TwoPointFromCombined(fgMade, fgAttempted, threeMade, threeAttempted int) (made, attempted int) {
	made = fgMade - threeMade
	attempted = fgAttempted - threeAttempted
	if made < 0 {
		made = 0
	}
	if attempted < 0 {
		attempted = 0
	}
	return made, attempted
}

// Points is the point total implied by the makes.
func (c ShotCounts) Points() int {
	return c.TwoMade*2 + c.ThreeMade*3 + c.FTMade
}

// FieldGoals returns combined two- and three-point makes and attempts.
func (c ShotCounts) FieldGoals() (made, attempted int) {
	return c.TwoMade + c.ThreeMade, c.TwoAttempted + c.ThreeAttempted
}

// PointRatios splits the point total across 2P, 3P and FT makes.
func PointRatios(c ShotCounts) (twoP, threeP, ft int) {
	total := c.Points()
	return Ratio(c.TwoMade*2, total), Ratio(c.ThreeMade*3, total), Ratio(c.FTMade, total)
}

// AttemptRatios splits field-goal attempts between 2P and 3P. Free throws
// are not part of the denominator.
func AttemptRatios(c ShotCounts) (twoP, threeP int) {
	total := c.TwoAttempted + c.ThreeAttempted
	return Ratio(c.TwoAttempted, total), Ratio(c.ThreeAttempted, total)
}

// TrueShooting returns PTS / (2 * (FGA + 0.44*FTA)) as a percentage.
func TrueShooting(c ShotCounts) float64 {
	_, fga := c.FieldGoals()
	denominator := 2.0 * (float64(fga) + 0.44*float64(c.FTAttempted))
	if denominator == 0 {
		return 0
	}
	return Round1(100 * float64(c.Points()) / denominator)
}

// EffectiveFG returns (FGM + 0.5*3PM) / FGA as a percentage.
func EffectiveFG(c ShotCounts) float64 {
	fgm, fga := c.FieldGoals()
	if fga == 0 {
		return 0
	}
	return Round1(100 * (float64(fgm) + 0.5*float64(c.ThreeMade)) / float64(fga))
}

// Possessions estimates possessions as FGA + 0.44*FTA + TOV.
func Possessions(c ShotCounts, turnovers int) float64 {
	return Round1(possessions(c, turnovers))
}

// OffensiveRating returns points per 100 estimated possessions.
func OffensiveRating(points int, c ShotCounts, turnovers int) float64 {
	poss := possessions(c, turnovers)
	if poss <= 0 {
		return 0
	}
	return Round1(100 * float64(points) / poss)
}

// Pace returns estimated possessions per game.
func Pace(c ShotCounts, turnovers, games int) float64 {
	if games <= 0 {
		return 0
	}
	return Round1(possessions(c, turnovers) / float64(games))
}

func possessions(c ShotCounts, turnovers int) float64 {
	_, fga := c.FieldGoals()
	return float64(fga) + 0.44*float64(c.FTAttempted) + float64(turnovers)
}

// Derive computes every split and ratio for one stat line.
func Derive(c ShotCounts) Derived {
	fgm, fga := c.FieldGoals()
	d := Derived{
		FG:              NewSplit(fgm, fga),
		FG2:             NewSplit(c.TwoMade, c.TwoAttempted),
		FG3:             NewSplit(c.ThreeMade, c.ThreeAttempted),
		FT:              NewSplit(c.FTMade, c.FTAttempted),
		TrueShootingPct: TrueShooting(c),
		EffectiveFGPct:  EffectiveFG(c),
	}
	d.PtsRatio2P, d.PtsRatio3P, d.PtsRatioFT = PointRatios(c)
	d.AttRatio2P, d.AttRatio3P = AttemptRatios(c)
	return d
}
