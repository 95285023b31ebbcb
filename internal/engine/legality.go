package engine

// IsLegalPieceMove reports whether p may travel from one square to another under
// its movement and capture shape. It does not look at whose turn it is and does
// not check whether the mover's own king is left in check; p is assumed to be
// the piece standing on from.
func IsLegalPieceMove(p Piece, from, to Square, b *Board) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}

	target := b.At(to)
	if !target.IsEmpty() && target.Color == p.Color {
		return false
	}

	dx := to.Col - from.Col
	dy := to.Row - from.Row

	switch p.Type {
	case Pawn:
		return pawnMove(p.Color, from, dx, dy, target, b)
	case Knight:
		return (abs(dx) == 2 && abs(dy) == 1) || (abs(dx) == 1 && abs(dy) == 2)
	case Bishop:
		return abs(dx) == abs(dy) && !HasObstacle(from, to, b)
	case Rook:
		return (dx == 0 || dy == 0) && !HasObstacle(from, to, b)
	case Queen:
		return (dx == 0 || dy == 0 || abs(dx) == abs(dy)) && !HasObstacle(from, to, b)
	case King:
		return abs(dx) <= 1 && abs(dy) <= 1
	default:
		return false
	}
}

func pawnMove(c Color, from Square, dx, dy int, target Piece, b *Board) bool {
	direction, homeRow := -1, 6
	if c == Black {
		direction, homeRow = 1, 1
	}

	if dx == 0 && dy == direction && target.IsEmpty() {
		return true
	}
	if dx == 0 && dy == 2*direction && from.Row == homeRow && target.IsEmpty() &&
		b.At(Sq(from.Row+direction, from.Col)).IsEmpty() {
		return true
	}
	// the same-color case was already rejected, so an occupied target is an enemy
	return abs(dx) == 1 && dy == direction && !target.IsEmpty()
}

// HasObstacle walks from the square after from up to, but excluding, to and
// reports whether any of those squares is occupied. The pair must lie on a
// rank, file or diagonal; for other pairs the walk stops at the board edge.
func HasObstacle(from, to Square, b *Board) bool {
	stepX := sign(to.Col - from.Col)
	stepY := sign(to.Row - from.Row)
	if stepX == 0 && stepY == 0 {
		return false
	}

	cur := Sq(from.Row+stepY, from.Col+stepX)
	for cur != to && cur.Valid() {
		if !b.At(cur).IsEmpty() {
			return true
		}
		cur = Sq(cur.Row+stepY, cur.Col+stepX)
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
