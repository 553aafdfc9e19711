package entity

// SuccessorStats describes one candidate move from a board.
type SuccessorStats struct {
	Board         string        `json:"board"`
	Cell          int           `json:"cell"`
	Probabilities Probabilities `json:"probabilities"`
}

// Advice is the answer to a "what should I play" query.
type Advice struct {
	Board      string           `json:"board"`
	Player     string           `json:"player"`
	Move       SuccessorStats   `json:"move"`
	Candidates []SuccessorStats `json:"candidates,omitempty"`
}
