package batch

import (
	"path/filepath"
	"testing"

	"github.com/fortuna/courtside/internal/testutil"
)

func TestFileSink_WriteRead(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)
	game := testutil.MockBoxscore("505001")

	path, err := sink.Write(game)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if want := filepath.Join(dir, game.League, "505001.json"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	got, err := sink.Read(game.League, "505001")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Home.Score != 80 || got.Away.Identity.Key != game.Away.Identity.Key {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestFileSink_ReadMissing(t *testing.T) {
	if _, err := NewFileSink(t.TempDir()).Read("nba", "nope"); err == nil {
		t.Error("Read() error = nil for a missing file")
	}
}
