package engine

import "testing"

func emptyBoard() Board { return Board{} }

func TestPawnMoves(t *testing.T) {
	b := InitialBoard()
	wp := NewPiece(Pawn, White)
	bp := NewPiece(Pawn, Black)

	tests := []struct {
		name     string
		piece    Piece
		from, to Square
		want     bool
	}{
		{"white single advance", wp, Sq(6, 4), Sq(5, 4), true},
		{"white double advance from home", wp, Sq(6, 4), Sq(4, 4), true},
		{"white triple advance", wp, Sq(6, 4), Sq(3, 4), false},
		{"white sideways", wp, Sq(6, 4), Sq(6, 5), false},
		{"white backward", wp, Sq(6, 4), Sq(7, 4), false},
		{"white diagonal onto empty", wp, Sq(6, 4), Sq(5, 5), false},
		{"black single advance", bp, Sq(1, 3), Sq(2, 3), true},
		{"black double advance from home", bp, Sq(1, 3), Sq(3, 3), true},
		{"black backward", bp, Sq(1, 3), Sq(0, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLegalPieceMove(tt.piece, tt.from, tt.to, &b); got != tt.want {
				t.Errorf("IsLegalPieceMove(%v, %v, %v) = %v, want %v", tt.piece, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPawnDoubleAdvanceBlocked(t *testing.T) {
	b := MustParseBoard(
		"....k...",
		"........",
		"........",
		"........",
		"........",
		"....n...",
		"....P...",
		"....K...",
	)
	wp := NewPiece(Pawn, White)
	if IsLegalPieceMove(wp, Sq(6, 4), Sq(4, 4), &b) {
		t.Fatalf("double advance through an occupied square must be illegal")
	}
	if IsLegalPieceMove(wp, Sq(6, 4), Sq(5, 4), &b) {
		t.Fatalf("straight advance onto an occupied square must be illegal")
	}

	b = MustParseBoard(
		"....k...",
		"........",
		"........",
		"........",
		"....n...",
		"........",
		"....P...",
		"....K...",
	)
	if IsLegalPieceMove(wp, Sq(6, 4), Sq(4, 4), &b) {
		t.Fatalf("double advance onto an occupied square must be illegal")
	}
}

func TestPawnDoubleAdvanceOnlyFromHomeRow(t *testing.T) {
	b := emptyBoard()
	wp := NewPiece(Pawn, White)
	b.Set(Sq(5, 0), wp)
	if IsLegalPieceMove(wp, Sq(5, 0), Sq(3, 0), &b) {
		t.Fatalf("double advance away from the home row must be illegal")
	}
}

func TestPawnCaptures(t *testing.T) {
	b := MustParseBoard(
		"....k...",
		"........",
		"........",
		"........",
		"...p.N..",
		"....P...",
		"........",
		"....K...",
	)
	wp := NewPiece(Pawn, White)
	if !IsLegalPieceMove(wp, Sq(5, 4), Sq(4, 3), &b) {
		t.Errorf("diagonal capture of an enemy pawn should be legal")
	}
	if IsLegalPieceMove(wp, Sq(5, 4), Sq(4, 5), &b) {
		t.Errorf("diagonal capture of a friendly piece must be illegal")
	}
	bp := NewPiece(Pawn, Black)
	if !IsLegalPieceMove(bp, Sq(4, 3), Sq(5, 4), &b) {
		t.Errorf("black diagonal capture should be legal")
	}
}

func TestKnightIgnoresObstruction(t *testing.T) {
	b := InitialBoard()
	n := NewPiece(Knight, White)
	for _, to := range []Square{Sq(5, 5), Sq(5, 7)} {
		if !IsLegalPieceMove(n, Sq(7, 6), to, &b) {
			t.Errorf("knight g1 -> %v should be legal", to)
		}
	}
	if IsLegalPieceMove(n, Sq(7, 6), Sq(6, 4), &b) {
		t.Errorf("knight onto a friendly pawn must be illegal")
	}
	if IsLegalPieceMove(n, Sq(7, 6), Sq(5, 6), &b) {
		t.Errorf("knight straight move must be illegal")
	}
}

func TestSlidersSymmetricOnEmptyBoard(t *testing.T) {
	pieces := []Piece{
		NewPiece(Rook, White),
		NewPiece(Bishop, Black),
		NewPiece(Queen, White),
		NewPiece(King, Black),
	}
	for _, p := range pieces {
		for fr := 0; fr < Size; fr++ {
			for fc := 0; fc < Size; fc++ {
				for tr := 0; tr < Size; tr++ {
					for tc := 0; tc < Size; tc++ {
						from, to := Sq(fr, fc), Sq(tr, tc)
						b := emptyBoard()
						b.Set(from, p)
						forward := IsLegalPieceMove(p, from, to, &b)
						b = emptyBoard()
						b.Set(to, p)
						backward := IsLegalPieceMove(p, to, from, &b)
						if forward != backward {
							t.Fatalf("%v: %v->%v = %v but reverse = %v", p.Type, from, to, forward, backward)
						}
					}
				}
			}
		}
	}
}

func TestSliderShapes(t *testing.T) {
	b := emptyBoard()
	tests := []struct {
		name     string
		piece    Piece
		from, to Square
		want     bool
	}{
		{"rook file", NewPiece(Rook, White), Sq(7, 0), Sq(0, 0), true},
		{"rook rank", NewPiece(Rook, White), Sq(4, 0), Sq(4, 7), true},
		{"rook diagonal", NewPiece(Rook, White), Sq(4, 4), Sq(5, 5), false},
		{"bishop diagonal", NewPiece(Bishop, Black), Sq(0, 2), Sq(5, 7), true},
		{"bishop straight", NewPiece(Bishop, Black), Sq(0, 2), Sq(0, 5), false},
		{"queen diagonal", NewPiece(Queen, White), Sq(3, 3), Sq(0, 0), true},
		{"queen straight", NewPiece(Queen, White), Sq(3, 3), Sq(3, 0), true},
		{"queen knight shape", NewPiece(Queen, White), Sq(3, 3), Sq(5, 4), false},
		{"king one step", NewPiece(King, White), Sq(7, 4), Sq(6, 5), true},
		{"king two steps", NewPiece(King, White), Sq(7, 4), Sq(7, 6), false},
		{"unknown piece", Piece{Type: PieceType(42), Color: White}, Sq(3, 3), Sq(3, 4), false},
		{"same square", NewPiece(Queen, White), Sq(3, 3), Sq(3, 3), false},
		{"off board", NewPiece(Rook, White), Sq(3, 3), Sq(3, 8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := b
			board.Set(tt.from, tt.piece)
			if got := IsLegalPieceMove(tt.piece, tt.from, tt.to, &board); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlidersBlocked(t *testing.T) {
	b := InitialBoard()
	if IsLegalPieceMove(NewPiece(Rook, White), Sq(7, 0), Sq(4, 0), &b) {
		t.Errorf("rook must not jump over its pawn")
	}
	if IsLegalPieceMove(NewPiece(Bishop, White), Sq(7, 2), Sq(4, 5), &b) {
		t.Errorf("bishop must not jump over its pawn")
	}
	if IsLegalPieceMove(NewPiece(Queen, Black), Sq(0, 3), Sq(4, 3), &b) {
		t.Errorf("queen must not jump over its pawn")
	}
}

func TestHasObstacle(t *testing.T) {
	b := MustParseBoard(
		"........",
		"........",
		"........",
		"...p....",
		"........",
		"........",
		"........",
		"........",
	)
	tests := []struct {
		name     string
		from, to Square
		want     bool
	}{
		{"file blocked", Sq(0, 3), Sq(6, 3), true},
		{"file clear up to blocker", Sq(0, 3), Sq(3, 3), false},
		{"diagonal blocked", Sq(0, 0), Sq(6, 6), true},
		{"diagonal clear", Sq(0, 1), Sq(6, 7), false},
		{"rank clear", Sq(4, 0), Sq(4, 7), false},
		{"adjacent", Sq(2, 3), Sq(3, 3), false},
		{"anti-diagonal blocked", Sq(5, 1), Sq(1, 5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasObstacle(tt.from, tt.to, &b); got != tt.want {
				t.Errorf("HasObstacle(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
