package engine

import (
	nchess "github.com/corentings/chess/v2"
)

// Move is a source/destination pair.
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// String renders the move in coordinate notation, e.g. "e2e4".
func (m Move) String() string {
	return SquareName(m.From) + SquareName(m.To)
}

// SquareName returns the algebraic name of sq ("a8" for row 0 col 0).
func SquareName(sq Square) string {
	if !sq.Valid() {
		return "-"
	}
	return toNSquare(sq).String()
}

func toNSquare(sq Square) nchess.Square {
	return nchess.NewSquare(nchess.File(sq.Col), nchess.Rank(Size-1-sq.Row))
}

// Simulate applies from→to on a copy of b and returns the copy together with
// whatever stood on the destination.
func Simulate(b Board, from, to Square) (Board, Piece) {
	captured := b.At(to)
	b.Set(to, b.At(from))
	b.Set(from, NoPiece)
	return b, captured
}

// LeavesKingInCheck runs the move on a scratch board and reports whether the
// mover's own king is attacked afterwards.
func LeavesKingInCheck(b *Board, from, to Square) bool {
	mover := b.At(from)
	next, _ := Simulate(*b, from, to)
	return IsInCheck(&next, mover.Color)
}

// LegalMoves lists every move for side c that the oracle accepts and that
// does not leave c's king in check, in row-major order of source then
// destination.
func LegalMoves(b *Board, c Color) []Move {
	var moves []Move
	for fr := 0; fr < Size; fr++ {
		for fc := 0; fc < Size; fc++ {
			p := b[fr][fc]
			if p.IsEmpty() || p.Color != c {
				continue
			}
			from := Sq(fr, fc)
			for tr := 0; tr < Size; tr++ {
				for tc := 0; tc < Size; tc++ {
					to := Sq(tr, tc)
					if !IsLegalPieceMove(p, from, to, b) {
						continue
					}
					if LeavesKingInCheck(b, from, to) {
						continue
					}
					moves = append(moves, Move{From: from, To: to})
				}
			}
		}
	}
	return moves
}

// HasLegalMove is LegalMoves without the allocation; it stops at the first hit.
func HasLegalMove(b *Board, c Color) bool {
	for fr := 0; fr < Size; fr++ {
		for fc := 0; fc < Size; fc++ {
			p := b[fr][fc]
			if p.IsEmpty() || p.Color != c {
				continue
			}
			from := Sq(fr, fc)
			for tr := 0; tr < Size; tr++ {
				for tc := 0; tc < Size; tc++ {
					to := Sq(tr, tc)
					if IsLegalPieceMove(p, from, to, b) && !LeavesKingInCheck(b, from, to) {
						return true
					}
				}
			}
		}
	}
	return false
}
