package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/fortuna/courtside/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// BoxscoreRepository stores assembled games as JSONB rows.
type BoxscoreRepository struct {
	db *store.Database
}

// NewBoxscoreRepository creates a new boxscore repository
func NewBoxscoreRepository(db *store.Database) *BoxscoreRepository {
	return &BoxscoreRepository{db: db}
}

const boxscoreColumns = `league, game_id, game_date, home_key, away_key,
	home_score, away_score, payload, created_at, updated_at`

// Upsert inserts a game or replaces the stored copy.
func (r *BoxscoreRepository) Upsert(ctx context.Context, game *store.GameBoxscore) error {
	payload, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("encoding boxscore %s: %w", game.GameID, err)
	}
	home, away := game.Score()

	query := `
		INSERT INTO boxscores (
			league, game_id, game_date, home_key, away_key, home_score, away_score, payload
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (league, game_id) DO UPDATE SET
			game_date = EXCLUDED.game_date,
			home_key = EXCLUDED.home_key,
			away_key = EXCLUDED.away_key,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			payload = EXCLUDED.payload,
			updated_at = NOW()
	`

	_, err = r.db.DB().ExecContext(ctx, query,
		game.League, game.GameID, game.Date,
		game.Home.Identity.Key, game.Away.Identity.Key,
		home, away, payload,
	)
	if err != nil {
		return fmt.Errorf("upserting boxscore %s/%s: %w", game.League, game.GameID, err)
	}
	return nil
}

// Get returns one stored game or store.ErrNotFound.
func (r *BoxscoreRepository) Get(ctx context.Context, league, gameID string) (*store.BoxscoreRecord, error) {
	query := `SELECT ` + boxscoreColumns + ` FROM boxscores WHERE league = $1 AND game_id = $2`

	rec, err := scanBoxscore(r.db.DB().QueryRowContext(ctx, query, league, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("boxscore %s/%s: %w", league, gameID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying boxscore: %w", err)
	}
	return rec, nil
}

// ListByIDs returns the stored games among gameIDs, in the order given.
// Missing IDs are skipped.
func (r *BoxscoreRepository) ListByIDs(ctx context.Context, league string, gameIDs []string) ([]*store.BoxscoreRecord, error) {
	query := `
		SELECT ` + boxscoreColumns + `
		FROM boxscores
		WHERE league = $1 AND game_id = ANY($2)
		ORDER BY array_position($2, game_id)
	`
	return r.list(ctx, query, league, pq.Array(gameIDs))
}

// ListByDate returns the games of one "YYYY.MM.DD" day.
func (r *BoxscoreRepository) ListByDate(ctx context.Context, league, date string) ([]*store.BoxscoreRecord, error) {
	query := `
		SELECT ` + boxscoreColumns + `
		FROM boxscores
		WHERE league = $1 AND game_date = $2
		ORDER BY game_id
	`
	return r.list(ctx, query, league, date)
}

func (r *BoxscoreRepository) list(ctx context.Context, query string, args ...interface{}) ([]*store.BoxscoreRecord, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing boxscores: %w", err)
	}
	defer rows.Close()

	var records []*store.BoxscoreRecord
	for rows.Next() {
		rec, err := scanBoxscore(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning boxscore: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanBoxscore(row scanner) (*store.BoxscoreRecord, error) {
	rec := &store.BoxscoreRecord{}
	var payload []byte
	err := row.Scan(
		&rec.League, &rec.GameID, &rec.GameDate, &rec.HomeKey, &rec.AwayKey,
		&rec.HomeScore, &rec.AwayScore, &payload, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var game store.GameBoxscore
	if err := json.Unmarshal(payload, &game); err != nil {
		return nil, fmt.Errorf("decoding payload of %s/%s: %w", rec.League, rec.GameID, err)
	}
	rec.Boxscore = &game
	return rec, nil
}
