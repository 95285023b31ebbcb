package game

import (
	"fmt"

	"github.com/AminKei/real-chees/internal/engine"
)

// Outcome explains why a game ended.
type Outcome string

const (
	OutcomeNone Outcome = ""
	// OutcomeCheck: the mover put the opponent in check and the policy ends the game there.
	OutcomeCheck     Outcome = "check"
	OutcomeCheckmate Outcome = "checkmate"
	// OutcomeNoMoves: the side to move had nothing legal to play.
	OutcomeNoMoves Outcome = "no_moves"
)

// EndPolicy decides what a check delivered by a committed move means.
type EndPolicy uint8

const (
	// CheckEndsGame treats any check as an immediate win for the mover,
	// without looking for the opponent's escapes.
	CheckEndsGame EndPolicy = iota
	// CheckmateEndsGame only ends the game when the checked side has no legal reply.
	CheckmateEndsGame
)

func (p EndPolicy) String() string {
	switch p {
	case CheckmateEndsGame:
		return "checkmate"
	default:
		return "check"
	}
}

func ParsePolicy(s string) (EndPolicy, error) {
	switch s {
	case "", "check":
		return CheckEndsGame, nil
	case "checkmate":
		return CheckmateEndsGame, nil
	default:
		return CheckEndsGame, fmt.Errorf("unknown end policy %q", s)
	}
}

func (p EndPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *EndPolicy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Captured holds captured pieces keyed by the captured piece's own color,
// in capture order.
type Captured struct {
	White []engine.Piece `json:"white"`
	Black []engine.Piece `json:"black"`
}

func (c *Captured) add(p engine.Piece) {
	if p.Color == engine.White {
		c.White = append(c.White, p)
	} else {
		c.Black = append(c.Black, p)
	}
}

func (c Captured) clone() Captured {
	return Captured{
		White: append([]engine.Piece{}, c.White...),
		Black: append([]engine.Piece{}, c.Black...),
	}
}

// MoveRecord is one committed ply.
type MoveRecord struct {
	Ply      int           `json:"ply"`
	Color    engine.Color  `json:"color"`
	Piece    engine.Piece  `json:"piece"`
	From     engine.Square `json:"from"`
	To       engine.Square `json:"to"`
	Captured engine.Piece  `json:"captured,omitzero"`
	Check    bool          `json:"check,omitempty"`
	Computer bool          `json:"computer,omitempty"`
}

// Notation renders the ply in coordinate form with an 'x' for captures and a
// trailing '+' for check, e.g. "e4xd5+".
func (r MoveRecord) Notation() string {
	sep := ""
	if !r.Captured.IsEmpty() {
		sep = "x"
	}
	s := engine.SquareName(r.From) + sep + engine.SquareName(r.To)
	if r.Check {
		s += "+"
	}
	return s
}

// State is a full snapshot of a game.
type State struct {
	Board    engine.Board   `json:"board"`
	Turn     engine.Color   `json:"turn"`
	GameOver bool           `json:"gameOver"`
	Winner   engine.Color   `json:"winner"`
	Outcome  Outcome        `json:"outcome,omitempty"`
	Selected *engine.Square `json:"selected,omitempty"`
	Captured Captured       `json:"captured"`
	History  []MoveRecord   `json:"history,omitempty"`
}

// InitialState is the standard starting position with white to move.
func InitialState() State {
	return State{
		Board:    engine.InitialBoard(),
		Turn:     engine.White,
		Captured: Captured{White: []engine.Piece{}, Black: []engine.Piece{}},
	}
}

// Clone returns a copy that shares nothing with s.
func (s State) Clone() State {
	out := s
	if s.Selected != nil {
		sel := *s.Selected
		out.Selected = &sel
	}
	out.Captured = s.Captured.clone()
	if s.History != nil {
		out.History = append([]MoveRecord(nil), s.History...)
	}
	return out
}
