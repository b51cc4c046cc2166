// Package nba ingests box scores from the NBA live-data JSON feed.
package nba

// Feed is the top-level boxscore document.
type Feed struct {
	Meta Meta `json:"meta"`
	Game Game `json:"game"`
}

// Meta describes the feed response.
type Meta struct {
	Version int    `json:"version"`
	Code    int    `json:"code"`
	Request string `json:"request"`
	Time    string `json:"time"`
}

// Game is one game with both teams.
type Game struct {
	GameID         string `json:"gameId"`
	GameTimeLocal  string `json:"gameTimeLocal"`
	GameTimeUTC    string `json:"gameTimeUTC"`
	GameStatus     int    `json:"gameStatus"`
	GameStatusText string `json:"gameStatusText"`
	Period         int    `json:"period"`
	Duration       int    `json:"duration"`
	Attendance     int    `json:"attendance"`
	Sellout        string `json:"sellout"`
	Arena          Arena  `json:"arena"`
	HomeTeam       Team   `json:"homeTeam"`
	AwayTeam       Team   `json:"awayTeam"`
}

// Game status codes.
const (
	StatusScheduled = 1
	StatusLive      = 2
	StatusFinal     = 3
)

// Arena is the venue block.
type Arena struct {
	ArenaID       int    `json:"arenaId"`
	ArenaName     string `json:"arenaName"`
	ArenaCity     string `json:"arenaCity"`
	ArenaState    string `json:"arenaState"`
	ArenaCountry  string `json:"arenaCountry"`
	ArenaTimezone string `json:"arenaTimezone"`
}

// Team is one side of the game.
type Team struct {
	TeamID      int            `json:"teamId"`
	TeamName    string         `json:"teamName"`
	TeamCity    string         `json:"teamCity"`
	TeamTricode string         `json:"teamTricode"`
	Score       int            `json:"score"`
	Players     []Player       `json:"players"`
	Statistics  TeamStatistics `json:"statistics"`
}

// DisplayName is the city and nickname as the feed spells them.
func (t Team) DisplayName() string {
	switch {
	case t.TeamCity == "":
		return t.TeamName
	case t.TeamName == "":
		return t.TeamCity
	default:
		return t.TeamCity + " " + t.TeamName
	}
}

// Player is one roster entry. Starter and Played are "1" or "0".
type Player struct {
	Status           string           `json:"status"`
	NotPlayingReason string           `json:"notPlayingReason"`
	Order            int              `json:"order"`
	PersonID         int              `json:"personId"`
	JerseyNum        string           `json:"jerseyNum"`
	Position         string           `json:"position"`
	Starter          string           `json:"starter"`
	OnCourt          string           `json:"oncourt"`
	Played           string           `json:"played"`
	Name             string           `json:"name"`
	FirstName        string           `json:"firstName"`
	FamilyName       string           `json:"familyName"`
	Statistics       PlayerStatistics `json:"statistics"`
}

// PlayerStatistics is a player's box line. Minutes is an ISO-8601 duration
// such as "PT32M51.00S".
type PlayerStatistics struct {
	Minutes                string  `json:"minutes"`
	Points                 int     `json:"points"`
	FieldGoalsMade         int     `json:"fieldGoalsMade"`
	FieldGoalsAttempted    int     `json:"fieldGoalsAttempted"`
	ThreePointersMade      int     `json:"threePointersMade"`
	ThreePointersAttempted int     `json:"threePointersAttempted"`
	FreeThrowsMade         int     `json:"freeThrowsMade"`
	FreeThrowsAttempted    int     `json:"freeThrowsAttempted"`
	ReboundsOffensive      int     `json:"reboundsOffensive"`
	ReboundsDefensive      int     `json:"reboundsDefensive"`
	ReboundsTotal          int     `json:"reboundsTotal"`
	Assists                int     `json:"assists"`
	Turnovers              int     `json:"turnovers"`
	Steals                 int     `json:"steals"`
	Blocks                 int     `json:"blocks"`
	FoulsPersonal          int     `json:"foulsPersonal"`
	PlusMinusPoints        float64 `json:"plusMinusPoints"`
}

// TeamStatistics is the team aggregate, including figures credited to the
// team rather than a player.
type TeamStatistics struct {
	PlayerStatistics
	ReboundsTeam          int `json:"reboundsTeam"`
	ReboundsTeamOffensive int `json:"reboundsTeamOffensive"`
	ReboundsTeamDefensive int `json:"reboundsTeamDefensive"`
	TurnoversTeam         int `json:"turnoversTeam"`
}
