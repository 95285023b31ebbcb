package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// Color identifies a side. The zero value is NoColor.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

// Opposite returns the other side; NoColor stays NoColor.
func (c Color) Opposite() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return ""
	}
}

// ParseColor accepts "white"/"w" and "black"/"b" in any case.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	case "":
		return NoColor, true
	default:
		return NoColor, false
	}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	v, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("invalid color %q", string(text))
	}
	*c = v
	return nil
}

// PieceType is the kind of piece regardless of color.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceLetters = map[PieceType]rune{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return ""
	}
}

// Piece is a tagged piece value. The zero value is an empty square.
type Piece struct {
	Type  PieceType
	Color Color
}

// NoPiece marks an empty square.
var NoPiece = Piece{}

func NewPiece(t PieceType, c Color) Piece {
	return Piece{Type: t, Color: c}
}

func (p Piece) IsEmpty() bool { return p.Type == NoPieceType }

// Rune returns the case-encoded letter: uppercase for white, lowercase for black.
// Empty squares yield 0.
func (p Piece) Rune() rune {
	r, ok := pieceLetters[p.Type]
	if !ok {
		return 0
	}
	if p.Color == White {
		return unicode.ToUpper(r)
	}
	return r
}

func (p Piece) String() string {
	if r := p.Rune(); r != 0 {
		return string(r)
	}
	return ""
}

// PieceFromRune decodes a single case-encoded letter (p/n/b/r/q/k).
func PieceFromRune(r rune) (Piece, bool) {
	color := Black
	if unicode.IsUpper(r) {
		color = White
	}
	lower := unicode.ToLower(r)
	for t, letter := range pieceLetters {
		if letter == lower {
			return Piece{Type: t, Color: color}, true
		}
	}
	return NoPiece, false
}

// ParsePiece decodes the textual form produced by String. The empty string is NoPiece.
func ParsePiece(s string) (Piece, error) {
	if s == "" {
		return NoPiece, nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return NoPiece, fmt.Errorf("invalid piece %q", s)
	}
	p, ok := PieceFromRune(runes[0])
	if !ok {
		return NoPiece, fmt.Errorf("invalid piece %q", s)
	}
	return p, nil
}

func (p Piece) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Piece) UnmarshalText(text []byte) error {
	v, err := ParsePiece(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
