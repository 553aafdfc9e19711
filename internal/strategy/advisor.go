package strategy

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/tictactoe"
)

// NextBestMove - the successor with the highest win probability for the player to move.
// Ties go to the lowest cell index, i.e. the first maximum in legal-move order.
func NextBestMove(table *Table, board entity.Board) (entity.Board, error) {
	successors, err := table.Successors(board)
	if err != nil {
		return entity.Board{}, err
	}

	if len(successors) == 0 {
		return entity.Board{}, fmt.Errorf("%w: board %s has no successors", apperror.ErrInvalidState, board)
	}

	player := tictactoe.CurrentPlayer(board)

	best := 0
	for i := 1; i < len(successors); i++ {
		if successors[i].Probabilities.For(player) > successors[best].Probabilities.For(player) {
			best = i
		}
	}

	return successors[best].Board, nil
}
