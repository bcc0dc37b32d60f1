package calculator

// DigitRequest is the JSON body for POST /calculator/sessions/{id}/digit.
type DigitRequest struct {
	Digit string `json:"digit"` // "0".."9" or "."
}

// OperationRequest is the JSON body for POST /calculator/sessions/{id}/operation.
type OperationRequest struct {
	Op string `json:"op"` // "add", "subtract", "multiply", "divide" or a button symbol
}

// KeysRequest is the JSON body for POST /calculator/sessions/{id}/keys.
type KeysRequest struct {
	Keys []string `json:"keys"`
}

// StateResponse is what the screen of one calculator needs to render.
type StateResponse struct {
	ID              string    `json:"id"`
	Current         string    `json:"current"`
	Previous        string    `json:"previous,omitempty"`
	Operation       Operation `json:"operation,omitempty"`
	OperationSymbol string    `json:"operation_symbol,omitempty"`
	Overwrite       bool      `json:"overwrite"`
	ClearLabel      string    `json:"clear_label"`
	Error           bool      `json:"error"`
	Display         Display   `json:"display"`
}

// KeyResult records one key applied by POST /calculator/sessions/{id}/keys.
type KeyResult struct {
	Key      string `json:"key"`
	Accepted bool   `json:"accepted"`
	Current  string `json:"current"`
}

// KeysResponse is the JSON response for POST /calculator/sessions/{id}/keys.
type KeysResponse struct {
	Keys  []KeyResult   `json:"keys"`
	State StateResponse `json:"state"`
}

func newStateResponse(id string, s State) StateResponse {
	return StateResponse{
		ID:              id,
		Current:         s.Current,
		Previous:        s.Previous,
		Operation:       s.Operation,
		OperationSymbol: s.Operation.Symbol(),
		Overwrite:       s.Overwrite,
		ClearLabel:      s.ClearLabel(),
		Error:           s.IsError(),
		Display:         Render(s),
	}
}
