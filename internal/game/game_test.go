package game

import (
	"math/rand"
	"testing"

	"github.com/AminKei/real-chees/internal/engine"
	"github.com/google/go-cmp/cmp"
)

func sq(r, c int) engine.Square { return engine.Sq(r, c) }

func fromRows(turn engine.Color, rows ...string) State {
	s := InitialState()
	s.Board = engine.MustParseBoard(rows...)
	s.Turn = turn
	return s
}

func TestOpeningDoubleAdvance(t *testing.T) {
	g := New()
	if !g.Move(sq(6, 4), sq(4, 4)) {
		t.Fatalf("e2e4 rejected")
	}
	b := g.Board()
	if !b.At(sq(6, 4)).IsEmpty() {
		t.Fatalf("source square not cleared")
	}
	if got := b.At(sq(4, 4)).String(); got != "P" {
		t.Fatalf("board[4][4] = %q, want P", got)
	}
	if g.Turn() != engine.Black {
		t.Fatalf("turn = %v, want black", g.Turn())
	}
	if _, ok := g.Selected(); ok {
		t.Fatalf("selection should be cleared after a move")
	}
	h := g.State().History
	if len(h) != 1 || h[0].Notation() != "e2e4" {
		t.Fatalf("unexpected history %+v", h)
	}
}

func TestThreeSquarePawnAdvanceRejected(t *testing.T) {
	g := New()
	before := g.State()
	if !g.BeginSelection(sq(6, 4)) {
		t.Fatalf("selection refused")
	}
	if g.AttemptMove(sq(3, 4)) {
		t.Fatalf("three-square advance accepted")
	}
	if diff := cmp.Diff(before, g.State()); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}
}

func TestBeginSelection(t *testing.T) {
	g := New()
	if g.BeginSelection(sq(4, 4)) {
		t.Fatalf("empty square selected")
	}
	if g.BeginSelection(sq(1, 0)) {
		t.Fatalf("opponent piece selected")
	}
	if _, ok := g.Selected(); ok {
		t.Fatalf("selection recorded on refusal")
	}
	if !g.BeginSelection(sq(7, 1)) {
		t.Fatalf("own knight refused")
	}
	if got, _ := g.Selected(); got != sq(7, 1) {
		t.Fatalf("selected = %v", got)
	}
}

func TestAttemptMoveWithoutSelection(t *testing.T) {
	g := New()
	if g.AttemptMove(sq(5, 0)) {
		t.Fatalf("move without selection accepted")
	}
	if g.Turn() != engine.White {
		t.Fatalf("turn changed")
	}
}

func TestKingsOnly(t *testing.T) {
	s := fromRows(engine.White,
		"....k...",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"....K...",
	)
	g := Restore(s)
	if g.Move(sq(7, 4), sq(7, 6)) {
		t.Fatalf("two-square king move accepted")
	}
	if !g.Move(sq(7, 4), sq(7, 5)) {
		t.Fatalf("king step rejected")
	}
	if g.GameOver() {
		t.Fatalf("game over after a quiet king move")
	}
}

func TestKingMayNotStepIntoAttack(t *testing.T) {
	s := fromRows(engine.White,
		"........",
		"........",
		"........",
		"........",
		"........",
		"....k...",
		"........",
		"....K...",
	)
	g := Restore(s)
	before := g.State()
	if g.Move(sq(7, 4), sq(6, 4)) {
		t.Fatalf("king moved next to the enemy king")
	}
	if diff := cmp.Diff(before, g.State()); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}
}

func TestSelfCheckNeverMutates(t *testing.T) {
	s := fromRows(engine.White,
		"....r..k",
		"........",
		"........",
		".p......",
		"........",
		"........",
		"....B...",
		"....K...",
	)
	s.Captured.Black = []engine.Piece{engine.NewPiece(engine.Knight, engine.Black)}
	g := Restore(s)
	before := g.State()
	// capturing the pawn would expose the king to the rook
	if g.Move(sq(6, 4), sq(3, 1)) {
		t.Fatalf("pinned bishop moved")
	}
	if diff := cmp.Diff(before, g.State()); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}
}

func TestCheckEndsGame(t *testing.T) {
	// black can simply step aside, the game still ends on the check
	s := fromRows(engine.White,
		"...k....",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K...",
	)
	g := Restore(s)
	if !g.Move(sq(7, 0), sq(0, 0)) {
		t.Fatalf("rook move rejected")
	}
	if !g.GameOver() || g.Winner() != engine.White {
		t.Fatalf("game over=%v winner=%v, want white win", g.GameOver(), g.Winner())
	}
	if got := g.State().Outcome; got != OutcomeCheck {
		t.Fatalf("outcome = %q", got)
	}
	if g.Turn() != engine.Black {
		t.Fatalf("turn still flips after the ending move")
	}
}

func TestCheckmatePolicy(t *testing.T) {
	rows := []string{
		"...k....",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K...",
	}
	g := Restore(fromRows(engine.White, rows...), WithPolicy(CheckmateEndsGame))
	if !g.Move(sq(7, 0), sq(0, 0)) {
		t.Fatalf("rook move rejected")
	}
	if g.GameOver() {
		t.Fatalf("escapable check ended the game")
	}

	// back-rank mate: the king is boxed in by its own pawns
	g = Restore(fromRows(engine.White,
		"......k.",
		".....ppp",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K...",
	), WithPolicy(CheckmateEndsGame))
	if !g.Move(sq(7, 0), sq(0, 0)) {
		t.Fatalf("rook move rejected")
	}
	if !g.GameOver() || g.Winner() != engine.White || g.State().Outcome != OutcomeCheckmate {
		t.Fatalf("expected checkmate, got %+v", g.State())
	}
}

func TestCapturedKeyedByOwnColor(t *testing.T) {
	g := New()
	moves := [][2]engine.Square{
		{sq(6, 4), sq(4, 4)}, // e4
		{sq(1, 3), sq(3, 3)}, // d5
		{sq(4, 4), sq(3, 3)}, // exd5
		{sq(0, 3), sq(3, 3)}, // Qxd5
	}
	for i, m := range moves {
		if !g.Move(m[0], m[1]) {
			t.Fatalf("move %d rejected", i)
		}
	}
	want := Captured{
		White: []engine.Piece{engine.NewPiece(engine.Pawn, engine.White)},
		Black: []engine.Piece{engine.NewPiece(engine.Pawn, engine.Black)},
	}
	if diff := cmp.Diff(want, g.State().Captured); diff != "" {
		t.Fatalf("captured mismatch (-want +got):\n%s", diff)
	}
	if n := g.State().History[2].Notation(); n != "e4xd5" {
		t.Fatalf("notation = %q", n)
	}
}

func TestReset(t *testing.T) {
	g := New()
	g.Move(sq(6, 4), sq(4, 4))
	g.Move(sq(1, 3), sq(3, 3))
	g.Move(sq(4, 4), sq(3, 3))
	g.BeginSelection(sq(0, 3))

	g.Reset()
	if diff := cmp.Diff(InitialState(), g.State()); diff != "" {
		t.Fatalf("reset state mismatch (-want +got):\n%s", diff)
	}
}

func TestDismissGameOver(t *testing.T) {
	g := Restore(fromRows(engine.White,
		"...k....",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K...",
	))
	g.Move(sq(7, 0), sq(0, 0))
	if !g.GameOver() {
		t.Fatalf("expected game over")
	}
	board := g.Board()
	g.DismissGameOver()
	if g.GameOver() || g.Winner() != engine.NoColor {
		t.Fatalf("game over not dismissed")
	}
	if g.Board() != board {
		t.Fatalf("board changed on dismiss")
	}
}

func TestFinishedGameRefusesMoves(t *testing.T) {
	g := Restore(fromRows(engine.White,
		"...k....",
		"..q.....",
		"........",
		"........",
		"...R....",
		"........",
		"........",
		"...K....",
	))
	if !g.Move(sq(4, 3), sq(2, 3)) {
		t.Fatalf("rook move rejected")
	}
	if !g.GameOver() || g.Winner() != engine.White {
		t.Fatalf("expected white win, got %+v", g.State())
	}
	ended := g.State()

	if g.BeginSelection(sq(1, 2)) {
		t.Fatalf("selection accepted after game over")
	}
	if g.Move(sq(1, 2), sq(2, 3)) {
		t.Fatalf("capture accepted after game over")
	}
	if diff := cmp.Diff(ended, g.State()); diff != "" {
		t.Fatalf("finished game changed (-want +got):\n%s", diff)
	}

	g.DismissGameOver()
	if !g.Move(sq(1, 2), sq(2, 3)) {
		t.Fatalf("capture rejected after dismiss")
	}
}

func TestStateIsACopy(t *testing.T) {
	g := New()
	g.BeginSelection(sq(6, 0))
	s := g.State()
	s.Selected.Row = 0
	s.Captured.White = append(s.Captured.White, engine.NewPiece(engine.Queen, engine.White))
	if got, _ := g.Selected(); got != sq(6, 0) {
		t.Fatalf("selection leaked: %v", got)
	}
	if len(g.State().Captured.White) != 0 {
		t.Fatalf("captured list leaked")
	}
}

func TestComputerMove(t *testing.T) {
	g := New(WithComputer(engine.Black), WithRand(rand.New(rand.NewSource(7))))
	if g.ComputerToMove() {
		t.Fatalf("computer should wait for white")
	}
	if _, ok := g.ComputerMove(); ok {
		t.Fatalf("computer moved out of turn")
	}
	g.Move(sq(6, 4), sq(4, 4))
	if !g.ComputerToMove() {
		t.Fatalf("computer should be to move")
	}
	legal := g.LegalMoves()
	mv, ok := g.ComputerMove()
	if !ok {
		t.Fatalf("computer did not move")
	}
	found := false
	for _, m := range legal {
		if m == mv {
			found = true
		}
	}
	if !found {
		t.Fatalf("computer played %v, not in legal set", mv)
	}
	if g.Turn() != engine.White {
		t.Fatalf("turn did not flip")
	}
	h := g.State().History
	if !h[len(h)-1].Computer {
		t.Fatalf("history entry not marked as computer")
	}
}

func TestComputerNoMoves(t *testing.T) {
	s := fromRows(engine.Black,
		"k.......",
		"..Q.....",
		".K......",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	g := Restore(s, WithComputer(engine.Black))
	if _, ok := g.ComputerMove(); ok {
		t.Fatalf("computer found a move in a stalemate")
	}
	if !g.GameOver() || g.Winner() != engine.White || g.State().Outcome != OutcomeNoMoves {
		t.Fatalf("unexpected end state %+v", g.State())
	}
	if g.ComputerToMove() {
		t.Fatalf("computer still to move after game over")
	}
}

func TestComputerNeverLeavesKingInCheck(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		s := fromRows(engine.Black,
			"....k...",
			"....b...",
			"........",
			"........",
			"........",
			"........",
			"........",
			"....R..K",
		)
		g := Restore(s, WithComputer(engine.Black), WithRand(rand.New(rand.NewSource(seed))))
		mv, ok := g.ComputerMove()
		if !ok {
			t.Fatalf("seed %d: no move", seed)
		}
		if mv.From == sq(1, 4) && mv.To.Col != 4 {
			t.Fatalf("seed %d: pinned bishop moved off the file: %v", seed, mv)
		}
	}
}
