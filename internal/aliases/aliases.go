// Package aliases loads the versioned name-correction resource shared by the
// identity resolver and the player name normalizer.
package aliases

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// TeamEntry is the display metadata for one canonical team key.
type TeamEntry struct {
	City     string `mapstructure:"city"`
	Nickname string `mapstructure:"nickname"`
	FullName string `mapstructure:"full_name"`
	Color    string `mapstructure:"color"`
	Color2   string `mapstructure:"color2"`
	Text     string `mapstructure:"text"`
	Text2    string `mapstructure:"text2"`
	Dark     string `mapstructure:"dark"`
}

// TeamTable maps raw team-name variants to canonical keys and keys to entries.
type TeamTable struct {
	Aliases   map[string]string    `mapstructure:"aliases"`
	Entries   map[string]TeamEntry `mapstructure:"entries"`
	FullNames map[string]string    `mapstructure:"full_names"`
}

// Table is the whole alias resource. Map keys are case-folded on load, so
// consumers must compare against normalized input.
type Table struct {
	Version string            `mapstructure:"version"`
	Teams   TeamTable         `mapstructure:"teams"`
	Cities  map[string]string `mapstructure:"cities"`
	Venues  map[string]string `mapstructure:"venues"`
	Players map[string]string `mapstructure:"players"`
}

// Load reads the alias resource from a YAML or JSON file.
func Load(path string) (*Table, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read alias table %s: %w", path, err)
	}
	return decode(v)
}

// Parse reads the alias resource from r. format is a viper config type
// ("yaml", "json", ...).
func Parse(r io.Reader, format string) (*Table, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}
	return decode(v)
}

// Player names and venue names routinely contain dots, so the default "."
// key delimiter cannot be used.
func newViper() *viper.Viper {
	return viper.NewWithOptions(viper.KeyDelimiter("::"))
}

func decode(v *viper.Viper) (*Table, error) {
	var t Table
	if err := v.Unmarshal(&t); err != nil {
		return nil, fmt.Errorf("failed to decode alias table: %w", err)
	}
	t.ensureMaps()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) ensureMaps() {
	if t.Teams.Aliases == nil {
		t.Teams.Aliases = map[string]string{}
	}
	if t.Teams.Entries == nil {
		t.Teams.Entries = map[string]TeamEntry{}
	}
	if t.Teams.FullNames == nil {
		t.Teams.FullNames = map[string]string{}
	}
	if t.Cities == nil {
		t.Cities = map[string]string{}
	}
	if t.Venues == nil {
		t.Venues = map[string]string{}
	}
	if t.Players == nil {
		t.Players = map[string]string{}
	}
}

// Validate checks that the resource is versioned and that every team alias
// points at a known entry.
func (t *Table) Validate() error {
	if strings.TrimSpace(t.Version) == "" {
		return fmt.Errorf("alias table has no version")
	}

	var dangling []string
	for alias, key := range t.Teams.Aliases {
		if _, ok := t.Teams.Entries[strings.ToLower(key)]; !ok {
			dangling = append(dangling, alias+" -> "+key)
		}
	}
	if len(dangling) > 0 {
		sort.Strings(dangling)
		return fmt.Errorf("alias table %s: team aliases without entries: %s", t.Version, strings.Join(dangling, ", "))
	}
	return nil
}

// Empty returns a valid table with no entries. Every lookup against it falls
// back.
func Empty() *Table {
	t := &Table{Version: "empty"}
	t.ensureMaps()
	return t
}
