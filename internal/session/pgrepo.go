package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/AminKei/real-chees/internal/engine"
	"github.com/AminKei/real-chees/internal/game"
	_ "github.com/lib/pq"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS chees_games (
	game_id     TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	winner      TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	computer    TEXT NOT NULL,
	moves       JSONB NOT NULL,
	pgn         TEXT NOT NULL,
	final_fen   TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL
)`

// PostgresRepository stores finished games in the chees_games table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewPostgresRepositoryFromDB(db), nil
}

// NewPostgresRepositoryFromDB wraps an already opened handle.
func NewPostgresRepositoryFromDB(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the results table if it is missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate chees_games: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *PostgresRepository) SaveResult(ctx context.Context, res *Result) error {
	if r == nil || r.db == nil || res == nil {
		return nil
	}
	moves, err := json.Marshal(res.Moves)
	if err != nil {
		return fmt.Errorf("marshal moves: %w", err)
	}
	duration := res.EndedAt.Sub(res.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	const q = `INSERT INTO chees_games (
		game_id, session_id, winner, outcome, computer,
		moves, pgn, final_fen, started_at, ended_at, duration_ms
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	ON CONFLICT (game_id) DO UPDATE SET
		winner=EXCLUDED.winner,
		outcome=EXCLUDED.outcome,
		moves=EXCLUDED.moves,
		pgn=EXCLUDED.pgn,
		final_fen=EXCLUDED.final_fen,
		ended_at=EXCLUDED.ended_at,
		duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		res.GameID, res.SessionID,
		res.Winner.String(), string(res.Outcome), res.Computer.String(),
		string(moves), BuildPGN(res), res.FinalFEN,
		res.StartedAt, res.EndedAt, duration,
	)
	if err != nil {
		return fmt.Errorf("save result %s: %w", res.GameID, err)
	}
	return nil
}

func (r *PostgresRepository) RecentResults(ctx context.Context, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT game_id, session_id, winner, outcome, computer, moves, final_fen, started_at, ended_at
		FROM chees_games ORDER BY ended_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []*Result
	for rows.Next() {
		var (
			res                   Result
			winner, outcome, comp string
			moves                 []byte
		)
		if err := rows.Scan(&res.GameID, &res.SessionID, &winner, &outcome, &comp, &moves,
			&res.FinalFEN, &res.StartedAt, &res.EndedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Winner, _ = engine.ParseColor(winner)
		res.Computer, _ = engine.ParseColor(comp)
		res.Outcome = game.Outcome(outcome)
		if err := json.Unmarshal(moves, &res.Moves); err != nil {
			return nil, fmt.Errorf("decode moves for %s: %w", res.GameID, err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}
