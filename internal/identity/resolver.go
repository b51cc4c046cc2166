// Package identity resolves raw team and venue names to canonical identities
// through alias tables, exact match first and guarded substring match second.
package identity

import (
	"strings"

	"github.com/fortuna/courtside/internal/aliases"
)

// Neutral display colors used when a team cannot be resolved or its entry
// leaves a color unset.
const (
	DefaultColor  = "#333333"
	DefaultColor2 = "#000000"
	DefaultText   = "#FFFFFF"
	DefaultText2  = "#FFFFFF"
	DefaultDark   = "#1A1A1A"
)

// Team is a resolved team identity with its display metadata.
type Team struct {
	Key      string `json:"key"`
	Raw      string `json:"raw"`
	City     string `json:"city"`
	Nickname string `json:"nickname"`
	FullName string `json:"full_name"`
	Color    string `json:"color"`
	Color2   string `json:"color2"`
	Text     string `json:"text"`
	Text2    string `json:"text2"`
	Dark     string `json:"dark"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Venue is a resolved venue identity.
type Venue struct {
	Name     string `json:"name"`
	Raw      string `json:"raw"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Resolver is read-only after construction and safe for concurrent use.
type Resolver struct {
	teams      *Table
	venues     *Table
	entries    map[string]aliases.TeamEntry
	cities     map[string]string
	fullNames  map[string]string
	strategies []Strategy
}

// NewResolver builds a resolver over the team and venue sections of an alias
// table. With no strategies, DefaultStrategies is used.
func NewResolver(table *aliases.Table, strategies ...Strategy) *Resolver {
	if table == nil {
		table = aliases.Empty()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}

	r := &Resolver{
		teams:      NewTable(table.Teams.Aliases),
		venues:     NewTable(table.Venues),
		entries:    make(map[string]aliases.TeamEntry, len(table.Teams.Entries)),
		cities:     make(map[string]string, len(table.Cities)),
		fullNames:  make(map[string]string, len(table.Teams.FullNames)),
		strategies: strategies,
	}
	for k, v := range table.Teams.Entries {
		r.entries[Normalize(k)] = v
	}
	for k, v := range table.Cities {
		r.cities[Normalize(k)] = v
	}
	for k, v := range table.Teams.FullNames {
		r.fullNames[Normalize(k)] = v
	}
	return r
}

// ResolveVenue maps a raw venue label to its English name, passing the
// cleaned raw label through when nothing matches.
func (r *Resolver) ResolveVenue(raw string) Venue {
	cleaned := CleanLabel(raw)
	if c, ok := r.venues.Lookup(cleaned, r.strategies...); ok {
		return Venue{Name: c.Value, Raw: raw}
	}
	return Venue{Name: cleaned, Raw: raw, Fallback: cleaned != ""}
}

// ResolveTeam maps a raw team name to a canonical identity. Unknown names get
// a neutral identity carrying the raw name as city and nickname.
func (r *Resolver) ResolveTeam(raw string) Team {
	cleaned := CleanLabel(raw)
	c, ok := r.teams.Lookup(cleaned, r.strategies...)
	if !ok {
		return fallbackTeam(raw, cleaned)
	}

	key := Normalize(c.Value)
	entry := r.entries[key]

	city := strings.ToUpper(key)
	if entry.City != "" {
		city = strings.ToUpper(entry.City)
	}
	if override, ok := r.cities[key]; ok {
		city = strings.ToUpper(override)
	}
	nickname := strings.ToUpper(entry.Nickname)

	fullName := r.fullNames[Normalize(cleaned)]
	if fullName == "" {
		fullName = entry.FullName
	}
	if fullName == "" {
		fullName = strings.TrimSpace(city + " " + nickname)
	}

	return Team{
		Key:      key,
		Raw:      raw,
		City:     city,
		Nickname: nickname,
		FullName: strings.ToUpper(fullName),
		Color:    orDefault(entry.Color, DefaultColor),
		Color2:   orDefault(entry.Color2, DefaultColor2),
		Text:     orDefault(entry.Text, DefaultText),
		Text2:    orDefault(entry.Text2, DefaultText2),
		Dark:     orDefault(entry.Dark, DefaultDark),
	}
}

func fallbackTeam(raw, cleaned string) Team {
	name := strings.ToUpper(cleaned)
	return Team{
		Key:      Normalize(cleaned),
		Raw:      raw,
		City:     name,
		Nickname: name,
		FullName: name,
		Color:    DefaultColor,
		Color2:   DefaultColor2,
		Text:     DefaultText,
		Text2:    DefaultText2,
		Dark:     DefaultDark,
		Fallback: true,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type winnerRule struct {
	keywords []string
	color    string
}

// Checked in order against the upper-cased city, nickname, full and raw name.
var winnerPalette = []winnerRule{
	{[]string{"KAWASAKI", "LAKES", "SHIGA"}, "#FFD932"},
	{[]string{"RYUKYU", "琉球", "GOLDEN"}, "#F27200"},
	{[]string{"SENDAI", "仙台", "89ERS", "GUNMA", "群馬", "THUNDERS", "SHINSHU", "信州", "BRAVE", "SHIBUYA", "渋谷", "SUNROCKERS"}, "#FEAE00"},
}

const defaultWinnerColor = "#FFD932"

// WinnerScoreColor is the color a team's score is drawn in: the team's text
// color unless it won, otherwise a highlight picked by name.
func WinnerScoreColor(team Team, score, opponentScore int) string {
	if score <= opponentScore {
		return orDefault(team.Text, DefaultText)
	}
	haystack := strings.ToUpper(strings.Join([]string{team.City, team.Nickname, team.FullName, team.Raw}, " "))
	for _, rule := range winnerPalette {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.color
			}
		}
	}
	return defaultWinnerColor
}
