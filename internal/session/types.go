package session

import (
	"errors"
	"strings"
	"time"

	"github.com/AminKei/real-chees/internal/engine"
	"github.com/AminKei/real-chees/internal/game"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrComputerTurn is returned for human input while the computer side is to move.
	ErrComputerTurn = errors.New("computer is to move")
	ErrConflict     = errors.New("concurrent update, retry")
	ErrClosed       = errors.New("session manager closed")
	// ErrInvalidPosition wraps a FEN that could not be loaded.
	ErrInvalidPosition = errors.New("invalid start position")
)

// Record is the persisted form of a hosted game.
type Record struct {
	ID        string         `json:"id"`
	GameID    string         `json:"gameId"`
	Computer  engine.Color   `json:"computer"`
	Policy    game.EndPolicy `json:"policy"`
	State     game.State     `json:"state"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.State = r.State.Clone()
	return &out
}

// CreateOptions configures a new session.
type CreateOptions struct {
	// Computer is the side played by the random selector; NoColor for two humans.
	Computer engine.Color
	Policy   game.EndPolicy
	// FEN optionally replaces the standard start position.
	FEN string
}

// Result describes a finished game.
type Result struct {
	GameID    string
	SessionID string
	Winner    engine.Color
	Outcome   game.Outcome
	Computer  engine.Color
	Moves     []string
	FinalFEN  string
	StartedAt time.Time
	EndedAt   time.Time
}

func resultFrom(rec *Record) *Result {
	moves := make([]string, 0, len(rec.State.History))
	for _, h := range rec.State.History {
		moves = append(moves, h.Notation())
	}
	return &Result{
		GameID:    rec.GameID,
		SessionID: rec.ID,
		Winner:    rec.State.Winner,
		Outcome:   rec.State.Outcome,
		Computer:  rec.Computer,
		Moves:     moves,
		FinalFEN:  rec.State.Board.FEN(),
		StartedAt: rec.CreatedAt,
		EndedAt:   rec.UpdatedAt,
	}
}

// ParseComputer accepts a color for the computer side, or "none"/"off" for a
// two-human game.
func ParseComputer(v string) (engine.Color, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none", "off", "human":
		return engine.NoColor, true
	}
	return engine.ParseColor(v)
}
