package cheesdto

import "time"

const EventGameFinished = "game_finished"

// GameFinishedEvent is posted to the webhook when a game ends.
type GameFinishedEvent struct {
	Type      string    `json:"type"`
	GameID    string    `json:"gameId"`
	SessionID string    `json:"sessionId"`
	Winner    string    `json:"winner"`
	Outcome   string    `json:"outcome"`
	Computer  string    `json:"computer"`
	Moves     []string  `json:"moves"`
	PGN       string    `json:"pgn"`
	FinalFEN  string    `json:"finalFen"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

type GameResult struct {
	GameID    string    `json:"gameId"`
	SessionID string    `json:"sessionId"`
	Winner    string    `json:"winner"`
	Outcome   string    `json:"outcome"`
	Computer  string    `json:"computer"`
	Moves     []string  `json:"moves"`
	FinalFEN  string    `json:"finalFen"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

type ResultsResponse struct {
	Results []GameResult `json:"results"`
}
