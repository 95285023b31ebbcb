package engine

import "testing"

func TestBoardFEN(t *testing.T) {
	b := InitialBoard()
	if got := b.FEN(); got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" {
		t.Fatalf("FEN() = %q", got)
	}
}

func TestFromFEN(t *testing.T) {
	b, turn, err := FromFEN("4k3/8/8/8/4P3/8/8/4K3 b - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if turn != Black {
		t.Fatalf("turn = %v, want black", turn)
	}
	if b.At(Sq(4, 4)) != NewPiece(Pawn, White) {
		t.Fatalf("expected white pawn on e4:\n%s", b.String())
	}
	if b.At(Sq(0, 4)) != NewPiece(King, Black) || b.At(Sq(7, 4)) != NewPiece(King, White) {
		t.Fatalf("kings misplaced:\n%s", b.String())
	}
}

func TestFromFENInvalid(t *testing.T) {
	if _, _, err := FromFEN("not a fen"); err == nil {
		t.Fatalf("expected error")
	}
}
