package websocket

import (
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/store"
)

// Message types exchanged with clients.
const (
	MessageTypeBoxscore    = "boxscore"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage is sent by clients.
type ClientMessage struct {
	Type   string `json:"type"`
	Filter Filter `json:"filter"`
}

// ServerMessage is sent to clients.
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorMessage is the payload of an error message.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Filter narrows the games a client receives. Empty lists match everything.
type Filter struct {
	Leagues []string `json:"leagues,omitempty"`
	Teams   []string `json:"teams,omitempty"`
}

// Matches reports whether the game passes the filter. Teams match on either
// side's identity key.
func (f Filter) Matches(game *store.GameBoxscore) bool {
	if len(f.Leagues) > 0 && !containsFold(f.Leagues, game.League) {
		return false
	}
	if len(f.Teams) > 0 &&
		!containsFold(f.Teams, game.Home.Identity.Key) &&
		!containsFold(f.Teams, game.Away.Identity.Key) {
		return false
	}
	return true
}

// BoxscoreUpdate is the payload of a boxscore message.
type BoxscoreUpdate struct {
	League    string              `json:"league"`
	GameID    string              `json:"game_id"`
	Date      string              `json:"date"`
	HomeKey   string              `json:"home_key"`
	AwayKey   string              `json:"away_key"`
	HomeScore int                 `json:"home_score"`
	AwayScore int                 `json:"away_score"`
	Boxscore  *store.GameBoxscore `json:"boxscore"`
}

// NewBoxscoreUpdate summarizes a game for broadcast.
func NewBoxscoreUpdate(game *store.GameBoxscore) BoxscoreUpdate {
	home, away := game.Score()
	return BoxscoreUpdate{
		League:    game.League,
		GameID:    game.GameID,
		Date:      game.Date,
		HomeKey:   game.Home.Identity.Key,
		AwayKey:   game.Away.Identity.Key,
		HomeScore: home,
		AwayScore: away,
		Boxscore:  game,
	}
}

func containsFold(list []string, item string) bool {
	for _, s := range list {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
