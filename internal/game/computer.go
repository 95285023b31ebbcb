package game

import (
	"github.com/AminKei/real-chees/internal/engine"
	"go.uber.org/zap"
)

// ComputerToMove reports whether the computer side should play now.
func (g *Game) ComputerToMove() bool {
	return g.computer != engine.NoColor && !g.state.GameOver && g.state.Turn == g.computer
}

// ComputerMove plays one uniformly random legal move for the computer side.
// When that side has nothing legal to play the game ends and the other side
// wins. The returned bool is false if no move was committed.
func (g *Game) ComputerMove() (engine.Move, bool) {
	if !g.ComputerToMove() {
		return engine.Move{}, false
	}
	moves := g.LegalMoves()
	if len(moves) == 0 {
		g.finish(g.computer.Opposite(), OutcomeNoMoves)
		g.state.Selected = nil
		g.logger.Info("computer_no_moves", zap.String("color", g.computer.String()))
		return engine.Move{}, false
	}
	mv := moves[g.rng.Intn(len(moves))]
	piece := g.state.Board.At(mv.From)
	next, captured := engine.Simulate(g.state.Board, mv.From, mv.To)
	g.commit(piece, mv.From, mv.To, next, captured, true)
	return mv, true
}
