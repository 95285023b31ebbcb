package engine

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

var (
	toNType = map[PieceType]nchess.PieceType{
		Pawn:   nchess.Pawn,
		Knight: nchess.Knight,
		Bishop: nchess.Bishop,
		Rook:   nchess.Rook,
		Queen:  nchess.Queen,
		King:   nchess.King,
	}
	fromNType = map[nchess.PieceType]PieceType{
		nchess.Pawn:   Pawn,
		nchess.Knight: Knight,
		nchess.Bishop: Bishop,
		nchess.Rook:   Rook,
		nchess.Queen:  Queen,
		nchess.King:   King,
	}
)

// FromFEN loads the piece placement and side to move of a FEN record.
// Castling, en passant and clocks are parsed but ignored by this engine.
func FromFEN(fen string) (Board, Color, error) {
	var b Board
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return b, NoColor, fmt.Errorf("parse fen: %w", err)
	}
	pos := nchess.NewGame(opt).Position()
	nb := pos.Board()
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			np := nb.Piece(toNSquare(Sq(r, c)))
			if np == nchess.NoPiece {
				continue
			}
			b[r][c] = NewPiece(fromNType[np.Type()], fromNColor(np.Color()))
		}
	}
	return b, fromNColor(pos.Turn()), nil
}

// FEN returns the piece placement field for b.
func (b *Board) FEN() string {
	squares := make(map[nchess.Square]nchess.Piece)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b[r][c]
			if p.IsEmpty() {
				continue
			}
			squares[toNSquare(Sq(r, c))] = nchess.NewPiece(toNType[p.Type], toNColor(p.Color))
		}
	}
	return nchess.NewBoard(squares).String()
}

func fromNColor(c nchess.Color) Color {
	switch c {
	case nchess.White:
		return White
	case nchess.Black:
		return Black
	default:
		return NoColor
	}
}

func toNColor(c Color) nchess.Color {
	if c == White {
		return nchess.White
	}
	return nchess.Black
}
