package engine

// FindKing scans row-major and returns the first king of color c.
func FindKing(b *Board, c Color) (Square, bool) {
	king := NewPiece(King, c)
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if b[r][col] == king {
				return Sq(r, col), true
			}
		}
	}
	return Square{}, false
}

// IsInCheck reports whether any piece of the opposite color has a legal
// geometric move onto c's king. A board without that king is never in check.
func IsInCheck(b *Board, c Color) bool {
	kingSq, ok := FindKing(b, c)
	if !ok {
		return false
	}
	enemy := c.Opposite()
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			p := b[r][col]
			if p.IsEmpty() || p.Color != enemy {
				continue
			}
			if IsLegalPieceMove(p, Sq(r, col), kingSq, b) {
				return true
			}
		}
	}
	return false
}
