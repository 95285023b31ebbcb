package httpapi

import (
	"strings"

	"github.com/AminKei/real-chees/internal/engine"
	"github.com/AminKei/real-chees/internal/game"
	"github.com/AminKei/real-chees/internal/session"
	"github.com/AminKei/real-chees/pkg/cheesdto"
)

func squareDTO(sq engine.Square) cheesdto.Square {
	return cheesdto.Square{Row: sq.Row, Col: sq.Col}
}

func pieceStrings(ps []engine.Piece) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.String())
	}
	return out
}

func (s *Server) toDTO(rec *session.Record) *cheesdto.Session {
	if rec == nil {
		return nil
	}
	st := rec.State
	out := &cheesdto.Session{
		ID:       rec.ID,
		GameID:   rec.GameID,
		Board:    st.Board.Grid(),
		FEN:      st.Board.FEN(),
		Turn:     st.Turn.String(),
		GameOver: st.GameOver,
		Winner:   st.Winner.String(),
		Outcome:  string(st.Outcome),
		Captured: cheesdto.CapturedPieces{
			White: pieceStrings(st.Captured.White),
			Black: pieceStrings(st.Captured.Black),
		},
		History:   make([]cheesdto.MoveRecord, 0, len(st.History)),
		Computer:  rec.Computer.String(),
		Policy:    rec.Policy.String(),
		Status:    s.statusLine(rec),
		Result:    s.resultLine(rec),
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if st.Selected != nil {
		sel := squareDTO(*st.Selected)
		out.Selected = &sel
	}
	for _, h := range st.History {
		out.History = append(out.History, cheesdto.MoveRecord{
			Ply:      h.Ply,
			Color:    h.Color.String(),
			Piece:    h.Piece.String(),
			From:     squareDTO(h.From),
			To:       squareDTO(h.To),
			Captured: h.Captured.String(),
			Check:    h.Check,
			Computer: h.Computer,
			Notation: h.Notation(),
		})
	}
	return out
}

func (s *Server) sideName(c engine.Color) string {
	name := c.String()
	if name == "" {
		return ""
	}
	return s.catalog.RenderOr("side."+name, nil, strings.ToUpper(name[:1])+name[1:])
}

// statusLine is the one-line caption shown above the board.
func (s *Server) statusLine(rec *session.Record) string {
	st := rec.State
	if st.GameOver {
		if st.Winner != engine.NoColor {
			winner := s.sideName(st.Winner)
			return s.catalog.RenderOr("status.winner", map[string]string{"Winner": winner}, winner+" wins!")
		}
		return s.catalog.RenderOr("status.over", nil, "Game Over")
	}
	turn := s.sideName(st.Turn)
	if st.Selected != nil {
		data := map[string]string{"Turn": turn, "Square": engine.SquareName(*st.Selected)}
		return s.catalog.RenderOr("status.selected", data, "Current Turn: "+turn)
	}
	if rec.Computer != engine.NoColor && st.Turn == rec.Computer {
		return s.catalog.RenderOr("status.computer", map[string]string{"Turn": turn}, "Current Turn: "+turn)
	}
	return s.catalog.RenderOr("status.turn", map[string]string{"Turn": turn}, "Current Turn: "+turn)
}

// resultLine explains how a finished game ended, e.g. "White gave check".
func (s *Server) resultLine(rec *session.Record) string {
	st := rec.State
	if !st.GameOver || st.Outcome == "" {
		return ""
	}
	data := map[string]string{
		"Winner": s.sideName(st.Winner),
		"Loser":  s.sideName(st.Winner.Opposite()),
	}
	var fallback string
	switch st.Outcome {
	case game.OutcomeCheck:
		fallback = data["Winner"] + " gave check"
	case game.OutcomeCheckmate:
		fallback = "Checkmate"
	case game.OutcomeNoMoves:
		fallback = data["Loser"] + " has no legal moves"
	}
	return s.catalog.RenderOr("outcome."+string(st.Outcome), data, fallback)
}

func resultDTO(r *session.Result) cheesdto.GameResult {
	return cheesdto.GameResult{
		GameID:    r.GameID,
		SessionID: r.SessionID,
		Winner:    r.Winner.String(),
		Outcome:   string(r.Outcome),
		Computer:  r.Computer.String(),
		Moves:     append([]string{}, r.Moves...),
		FinalFEN:  r.FinalFEN,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	}
}
