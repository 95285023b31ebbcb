package cheesdto

// Error is the JSON body of every non-2xx API response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chees api error"
}

const (
	CodeNotFound     = "not_found"
	CodeBadRequest   = "bad_request"
	CodeComputerTurn = "computer_turn"
	CodeConflict     = "conflict"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal"
)
