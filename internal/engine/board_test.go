package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInitialBoardLayout(t *testing.T) {
	b := InitialBoard()
	want := []string{
		"rnbqkbnr",
		"pppppppp",
		"........",
		"........",
		"........",
		"........",
		"PPPPPPPP",
		"RNBQKBNR",
	}
	if diff := cmp.Diff(want, b.Rows()); diff != "" {
		t.Fatalf("initial rows mismatch (-want +got):\n%s", diff)
	}
	if b.At(Sq(7, 3)) != NewPiece(Queen, White) {
		t.Fatalf("white queen not on (7,3)")
	}
	if b.At(Sq(-1, 0)) != NoPiece {
		t.Fatalf("off-board square should read empty")
	}
}

func TestParseBoardErrors(t *testing.T) {
	cases := map[string][]string{
		"too few rows": {"........"},
		"short row":    {"rnbqkbn", "", "", "", "", "", "", ""},
		"bad letter": {
			"rnbqkbnx",
			"........", "........", "........",
			"........", "........", "........", "........",
		},
	}
	for name, rows := range cases {
		if _, err := ParseBoard(rows); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestBoardJSON(t *testing.T) {
	b := InitialBoard()
	b.Set(Sq(6, 4), NoPiece)
	b.Set(Sq(4, 4), NewPiece(Pawn, White))

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Board
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != b {
		t.Fatalf("decoded board differs:\n%s\nwant\n%s", got.String(), b.String())
	}
}

func TestGrid(t *testing.T) {
	b := InitialBoard()
	g := b.Grid()
	if g[0][4] != "k" || g[7][4] != "K" || g[4][4] != "" {
		t.Fatalf("unexpected grid cells %q %q %q", g[0][4], g[7][4], g[4][4])
	}
}

func TestPieceCodec(t *testing.T) {
	for _, r := range "pnbrqkPNBRQK" {
		p, ok := PieceFromRune(r)
		if !ok {
			t.Fatalf("PieceFromRune(%q) failed", r)
		}
		if p.Rune() != r {
			t.Fatalf("rune %q decoded to %v", r, p)
		}
	}
	if _, ok := PieceFromRune('x'); ok {
		t.Fatalf("expected 'x' to be rejected")
	}
	if p, err := ParsePiece(""); err != nil || !p.IsEmpty() {
		t.Fatalf("empty string should be NoPiece")
	}
	if NewPiece(Knight, White).String() != "N" {
		t.Fatalf("white knight should print as N")
	}
}
