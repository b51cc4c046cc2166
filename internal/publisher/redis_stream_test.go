package publisher

import (
	"strings"
	"testing"
	"time"

	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/testutil"
)

func TestStreamName(t *testing.T) {
	if got := StreamName("nba"); got != "games.boxscore.nba" {
		t.Errorf("StreamName() = %q", got)
	}
}

func TestBoxscoreEvent(t *testing.T) {
	now := time.Date(2025, 10, 4, 21, 0, 0, 0, time.UTC)
	values, err := BoxscoreEvent(testutil.MockBoxscore("505001"), now)
	if err != nil {
		t.Fatalf("BoxscoreEvent() error = %v", err)
	}

	if values["game_id"] != "505001" || values["league"] != "bleague" {
		t.Errorf("ids = %v %v", values["game_id"], values["league"])
	}
	if values["home_score"] != 80 || values["away_score"] != 75 {
		t.Errorf("score = %v-%v", values["home_score"], values["away_score"])
	}
	if values["timestamp"] != now.Unix() {
		t.Errorf("timestamp = %v", values["timestamp"])
	}
	if data, _ := values["data"].(string); !strings.Contains(data, `"game_id":"505001"`) {
		t.Errorf("data = %s", data)
	}
}

func TestDecodeEvent(t *testing.T) {
	game := testutil.MockBoxscore("505001")
	values, err := BoxscoreEvent(game, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeEvent(values)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if got.GameID != "505001" || got.Home.Score != 80 || len(got.Away.Players) != len(game.Away.Players) {
		t.Errorf("decoded = %+v", got)
	}

	for name, bad := range map[string]map[string]interface{}{
		"missing data": {"game_id": "1"},
		"not a string": {"data": 42},
		"corrupt json": {"data": "{"},
	} {
		if _, err := DecodeEvent(bad); err == nil {
			t.Errorf("%s: DecodeEvent() error = nil", name)
		}
	}
}

func TestNewConsumer_Streams(t *testing.T) {
	c := NewConsumer(nil, "courtside-ws", "ws-1", []string{"bleague", "nba"}, func(*store.GameBoxscore) {}, logging.Discard())
	want := []string{"games.boxscore.bleague", "games.boxscore.nba"}
	if len(c.streams) != 2 || c.streams[0] != want[0] || c.streams[1] != want[1] {
		t.Errorf("streams = %v, want %v", c.streams, want)
	}
}
