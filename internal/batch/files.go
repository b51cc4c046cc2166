package batch

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/fortuna/courtside/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileSink writes each game as {dir}/{league}/{gameID}.json.
type FileSink struct {
	dir string
}

// NewFileSink returns a sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Path returns the file a game is written to.
func (f *FileSink) Path(league, gameID string) string {
	return filepath.Join(f.dir, league, gameID+".json")
}

// Write encodes the game and returns the written path.
func (f *FileSink) Write(game *store.GameBoxscore) (string, error) {
	path := f.Path(game.League, game.GameID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode game %s: %w", game.GameID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Read loads a previously written game.
func (f *FileSink) Read(league, gameID string) (*store.GameBoxscore, error) {
	data, err := os.ReadFile(f.Path(league, gameID))
	if err != nil {
		return nil, err
	}
	var game store.GameBoxscore
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", gameID, err)
	}
	return &game, nil
}
