package cheesdto

type CreateSessionRequest struct {
	// Computer is "white", "black" or "none". Empty selects the server default.
	Computer string `json:"computer,omitempty"`
	Policy   string `json:"policy,omitempty"`
	FEN      string `json:"fen,omitempty"`
}

type SelectRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// MoveRequest carries either a destination for the pending selection
// (row/col) or an explicit from/to pair.
type MoveRequest struct {
	Row  *int    `json:"row,omitempty"`
	Col  *int    `json:"col,omitempty"`
	From *Square `json:"from,omitempty"`
	To   *Square `json:"to,omitempty"`
}
