package cheesdto

import "time"

type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

type MoveRecord struct {
	Ply      int    `json:"ply"`
	Color    string `json:"color"`
	Piece    string `json:"piece"`
	From     Square `json:"from"`
	To       Square `json:"to"`
	Captured string `json:"captured,omitempty"`
	Check    bool   `json:"check,omitempty"`
	Computer bool   `json:"computer,omitempty"`
	Notation string `json:"notation"`
}

// Session is the snapshot the rendering layer draws from. Board cells hold
// the case-encoded piece letter or "" for an empty square.
type Session struct {
	ID        string         `json:"id"`
	GameID    string         `json:"gameId"`
	Board     [][]string     `json:"board"`
	FEN       string         `json:"fen"`
	Turn      string         `json:"turn"`
	GameOver  bool           `json:"gameOver"`
	Winner    string         `json:"winner"`
	Outcome   string         `json:"outcome,omitempty"`
	Selected  *Square        `json:"selected,omitempty"`
	Captured  CapturedPieces `json:"captured"`
	History   []MoveRecord   `json:"history"`
	Computer  string         `json:"computer"`
	Policy    string         `json:"policy"`
	Status    string         `json:"status"`
	Result    string         `json:"result,omitempty"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// MoveResponse wraps the snapshot with whether the command took effect.
type MoveResponse struct {
	Applied bool     `json:"applied"`
	Session *Session `json:"session"`
}
