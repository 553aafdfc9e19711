package entity

import "math"

// Outcome is the result of a finished game.
type Outcome uint8

const (
	PlayerOneWin Outcome = iota
	PlayerTwoWin
	Draw
)

func (that Outcome) String() string {
	switch that {
	case PlayerOneWin:
		return "player_one_win"
	case PlayerTwoWin:
		return "player_two_win"
	default:
		return "draw"
	}
}

// Probabilities are descriptive frequencies over every game passing through a board.
type Probabilities struct {
	PlayerOneWins float64 `json:"p1_wins"`
	PlayerTwoWins float64 `json:"p2_wins"`
	Draw          float64 `json:"draw"`
}

func (that Probabilities) Sum() float64 {
	return that.PlayerOneWins + that.PlayerTwoWins + that.Draw
}

// For returns the win probability of the given player.
func (that Probabilities) For(player Cell) float64 {
	if player == PlayerTwo {
		return that.PlayerTwoWins
	}

	return that.PlayerOneWins
}

// Round is for presentation only, the table keeps full precision.
func (that Probabilities) Round(places int) Probabilities {
	scale := math.Pow10(places)
	round := func(v float64) float64 {
		return math.Round(v*scale) / scale
	}

	return Probabilities{
		PlayerOneWins: round(that.PlayerOneWins),
		PlayerTwoWins: round(that.PlayerTwoWins),
		Draw:          round(that.Draw),
	}
}
