package testutil

import (
	"github.com/fortuna/courtside/internal/aliases"
	"github.com/fortuna/courtside/internal/identity"
	"github.com/fortuna/courtside/internal/names"
	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

// MockPlayerLine creates a played raw line with a 2/4 two-point split, apply
// overrides to change individual fields.
func MockPlayerLine(jersey, name string, overrides ...func(*store.RawPlayerLine)) store.RawPlayerLine {
	line := store.RawPlayerLine{
		Jersey:       jersey,
		NameNative:   name,
		Minutes:      "20:00",
		Points:       4,
		FG2Made:      2,
		FG2Attempted: 4,
		OffReb:       1,
		DefReb:       2,
		Reb:          3,
		Ast:          1,
	}
	for _, o := range overrides {
		o(&line)
	}
	return line
}

// DidNotPlay marks a mock line as a did-not-play row.
func DidNotPlay(l *store.RawPlayerLine) {
	*l = store.RawPlayerLine{Jersey: l.Jersey, NameNative: l.NameNative, Minutes: "DNP", DidNotPlay: true}
}

// Starter marks a mock line as a starter.
func Starter(l *store.RawPlayerLine) {
	l.Starter = true
}

// MockAliasTable creates a small alias table with two teams and one venue.
func MockAliasTable() *aliases.Table {
	t := aliases.Empty()
	t.Version = "fixture"
	t.Teams.Aliases = map[string]string{
		"千葉ジェッツ":   "chibaj",
		"琉球ゴールデンキングス": "ryukyu",
	}
	t.Teams.Entries = map[string]aliases.TeamEntry{
		"chibaj": {Nickname: "Jets", FullName: "Chiba Jets", Color: "#E60012", Text: "#FFFFFF"},
		"ryukyu": {Nickname: "Golden Kings", FullName: "Ryukyu Golden Kings", Color: "#2B0F5E", Text: "#FFFFFF"},
	}
	t.Cities = map[string]string{"chibaj": "CHIBA"}
	t.Venues = map[string]string{"船橋アリーナ": "Funabashi Arena"}
	t.Players = map[string]string{"飯尾 文哉": "Fumiya Iio"}
	return t
}

// MockResolvers returns an identity resolver and name normalizer over
// MockAliasTable.
func MockResolvers() (*identity.Resolver, *names.Normalizer) {
	t := MockAliasTable()
	return identity.NewResolver(t), names.NewNormalizer(t)
}

// MockBoxscore creates an assembled game with one starter per side.
func MockBoxscore(gameID string) *store.GameBoxscore {
	line := func(jersey, display, fileSafe string, pts, reb, ast int) store.PlayerLine {
		raw := MockPlayerLine(jersey, display, Starter, func(l *store.RawPlayerLine) {
			l.Points = pts
			l.Reb = reb
			l.Ast = ast
		})
		return store.PlayerLine{
			RawPlayerLine: raw,
			Name:          names.Name{Display: display, FileSafe: fileSafe, Latin: true},
			Derived:       stats.Derive(raw.Shots()),
		}
	}

	return &store.GameBoxscore{
		League:     store.LeagueBLeague,
		GameID:     gameID,
		Date:       "2025.10.04",
		LeagueType: "B1",
		Round:      "ROUND1",
		Venue:      store.VenueIdentity{Name: "Funabashi Arena", Raw: "船橋アリーナ"},
		Attendance: 5000,
		Home: store.TeamBox{
			Identity: store.TeamIdentity{Key: "chibaj", City: "CHIBA", Nickname: "JETS", FullName: "CHIBA JETS"},
			NameRaw:  "千葉ジェッツ",
			Score:    80,
			Players:  []store.PlayerLine{line("2", "Yuki Togashi", "YUKI TOGASHI", 20, 3, 8)},
		},
		Away: store.TeamBox{
			Identity: store.TeamIdentity{Key: "ryukyu", City: "RYUKYU", Nickname: "GOLDEN KINGS", FullName: "RYUKYU GOLDEN KINGS"},
			NameRaw:  "琉球ゴールデンキングス",
			Score:    75,
			Players:  []store.PlayerLine{line("45", "Jack Cooley", "JACK COOLEY", 15, 12, 2)},
		},
	}
}
