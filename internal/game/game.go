// Package game holds the turn state machine on top of the engine rules: piece
// selection, the move commit pipeline, captures and the computer opponent.
package game

import (
	"math/rand"
	"time"

	"github.com/AminKei/real-chees/internal/engine"
	"go.uber.org/zap"
)

// Game owns one State. It is not safe for concurrent use; callers serialise
// access (session.Manager does so through Redis transactions).
type Game struct {
	state    State
	computer engine.Color
	policy   EndPolicy
	rng      *rand.Rand
	logger   *zap.Logger
}

type Option func(*Game)

// WithComputer hands side c to the random move selector. NoColor means both
// sides are played by humans.
func WithComputer(c engine.Color) Option {
	return func(g *Game) { g.computer = c }
}

func WithPolicy(p EndPolicy) Option {
	return func(g *Game) { g.policy = p }
}

// WithRand sets the randomness source for the computer opponent.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) {
		if r != nil {
			g.rng = r
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// New starts a game from the standard initial position.
func New(opts ...Option) *Game {
	return Restore(InitialState(), opts...)
}

// Restore continues a game from a previously captured State.
func Restore(s State, opts ...Option) *Game {
	g := &Game{
		state:    s.Clone(),
		computer: engine.NoColor,
		policy:   CheckEndsGame,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.state.Turn == engine.NoColor {
		g.state.Turn = engine.White
	}
	return g
}

// State returns a deep copy of the current snapshot.
func (g *Game) State() State { return g.state.Clone() }

func (g *Game) Board() engine.Board { return g.state.Board }
func (g *Game) Turn() engine.Color  { return g.state.Turn }
func (g *Game) GameOver() bool      { return g.state.GameOver }
func (g *Game) Winner() engine.Color {
	return g.state.Winner
}
func (g *Game) Computer() engine.Color { return g.computer }

// Selected returns the pending source square, if any.
func (g *Game) Selected() (engine.Square, bool) {
	if g.state.Selected == nil {
		return engine.Square{}, false
	}
	return *g.state.Selected, true
}

// BeginSelection records sq as the pending source when it holds a piece of
// the side to move and the game is still running. Anything else leaves the
// state untouched.
func (g *Game) BeginSelection(sq engine.Square) bool {
	if g.state.GameOver {
		return false
	}
	p := g.state.Board.At(sq)
	if p.IsEmpty() || p.Color != g.state.Turn {
		return false
	}
	sel := sq
	g.state.Selected = &sel
	return true
}

// AttemptMove moves the selected piece to dest. It reports whether the move
// was committed; on any refusal the selection is cleared and nothing else changes.
func (g *Game) AttemptMove(dest engine.Square) bool {
	if g.state.Selected == nil {
		return false
	}
	from := *g.state.Selected
	g.state.Selected = nil
	if g.state.GameOver {
		return false
	}

	piece := g.state.Board.At(from)
	if !engine.IsLegalPieceMove(piece, from, dest, &g.state.Board) {
		g.logger.Debug("game_move_rejected",
			zap.Stringer("from", from), zap.Stringer("to", dest), zap.String("reason", "illegal"))
		return false
	}
	next, captured := engine.Simulate(g.state.Board, from, dest)
	if engine.IsInCheck(&next, piece.Color) {
		g.logger.Debug("game_move_rejected",
			zap.Stringer("from", from), zap.Stringer("to", dest), zap.String("reason", "self_check"))
		return false
	}
	g.commit(piece, from, dest, next, captured, false)
	return true
}

// Move is BeginSelection followed by AttemptMove.
func (g *Game) Move(from, to engine.Square) bool {
	if !g.BeginSelection(from) {
		return false
	}
	return g.AttemptMove(to)
}

func (g *Game) commit(piece engine.Piece, from, to engine.Square, next engine.Board, captured engine.Piece, byComputer bool) {
	if !captured.IsEmpty() {
		g.state.Captured.add(captured)
	}
	g.state.Board = next

	mover := piece.Color
	opponent := mover.Opposite()
	check := engine.IsInCheck(&g.state.Board, opponent)
	if check {
		switch g.policy {
		case CheckmateEndsGame:
			if !engine.HasLegalMove(&g.state.Board, opponent) {
				g.finish(mover, OutcomeCheckmate)
			}
		default:
			g.finish(mover, OutcomeCheck)
		}
	}

	g.state.History = append(g.state.History, MoveRecord{
		Ply:      len(g.state.History) + 1,
		Color:    mover,
		Piece:    piece,
		From:     from,
		To:       to,
		Captured: captured,
		Check:    check,
		Computer: byComputer,
	})
	g.state.Selected = nil
	g.state.Turn = opponent

	g.logger.Debug("game_move",
		zap.String("color", mover.String()),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.String("captured", captured.String()),
		zap.Bool("check", check),
		zap.Bool("game_over", g.state.GameOver),
	)
}

func (g *Game) finish(winner engine.Color, why Outcome) {
	g.state.GameOver = true
	g.state.Winner = winner
	g.state.Outcome = why
}

// DismissGameOver clears the game-over flag, winner and outcome while leaving
// the board and turn as they are, so play may continue past a check ending.
func (g *Game) DismissGameOver() {
	g.state.GameOver = false
	g.state.Winner = engine.NoColor
	g.state.Outcome = OutcomeNone
}

// Reset replaces the whole state with the initial position.
func (g *Game) Reset() {
	g.state = InitialState()
}

// LegalMoves lists the moves available to the side to move.
func (g *Game) LegalMoves() []engine.Move {
	return engine.LegalMoves(&g.state.Board, g.state.Turn)
}
