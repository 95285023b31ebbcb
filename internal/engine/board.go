package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Size is the number of rows and columns on the board.
const Size = 8

// Square is a (row, column) pair. Row 0 is black's back rank, row 7 is white's.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func Sq(row, col int) Square { return Square{Row: row, Col: col} }

// Valid reports whether both coordinates lie in [0,7].
func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

func (s Square) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// Board is a fixed-size grid held by value. Assigning a Board copies it, so a
// trial move on a copy never touches the original.
type Board [Size][Size]Piece

var initialRows = [Size]string{
	"rnbqkbnr",
	"pppppppp",
	"........",
	"........",
	"........",
	"........",
	"PPPPPPPP",
	"RNBQKBNR",
}

// InitialBoard returns the standard starting position.
func InitialBoard() Board {
	b, err := ParseBoard(initialRows[:])
	if err != nil {
		panic(err)
	}
	return b
}

// At returns the piece on sq; off-board squares read as empty.
func (b *Board) At(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return b[sq.Row][sq.Col]
}

func (b *Board) Set(sq Square, p Piece) {
	if !sq.Valid() {
		return
	}
	b[sq.Row][sq.Col] = p
}

// ParseBoard decodes eight rows of eight characters each, top row first.
// '.' and ' ' are empty squares, letters follow the case-encodes-color convention.
func ParseBoard(rows []string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("board needs %d rows, got %d", Size, len(rows))
	}
	for r, line := range rows {
		cells := []rune(line)
		if len(cells) != Size {
			return b, fmt.Errorf("row %d: need %d squares, got %d", r, Size, len(cells))
		}
		for c, ch := range cells {
			if ch == '.' || ch == ' ' {
				continue
			}
			p, ok := PieceFromRune(ch)
			if !ok {
				return b, fmt.Errorf("row %d col %d: invalid piece %q", r, c, ch)
			}
			b[r][c] = p
		}
	}
	return b, nil
}

// MustParseBoard is ParseBoard for fixtures known to be valid.
func MustParseBoard(rows ...string) Board {
	b, err := ParseBoard(rows)
	if err != nil {
		panic(err)
	}
	return b
}

// Rows encodes the board in the format accepted by ParseBoard.
func (b *Board) Rows() []string {
	rows := make([]string, Size)
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		sb.Reset()
		for c := 0; c < Size; c++ {
			if ch := b[r][c].Rune(); ch != 0 {
				sb.WriteRune(ch)
			} else {
				sb.WriteByte('.')
			}
		}
		rows[r] = sb.String()
	}
	return rows
}

// Grid returns the board as nested strings with "" for empty squares.
func (b *Board) Grid() [][]string {
	grid := make([][]string, Size)
	for r := 0; r < Size; r++ {
		grid[r] = make([]string, Size)
		for c := 0; c < Size; c++ {
			grid[r][c] = b[r][c].String()
		}
	}
	return grid
}

func (b *Board) String() string {
	return strings.Join(b.Rows(), "\n")
}

func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Rows())
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	parsed, err := ParseBoard(rows)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
