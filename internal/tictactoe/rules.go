package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// IsWin - checks only the lines of the requested player.
func IsWin(board entity.Board, player entity.Cell) bool {
	for _, combo := range WinCombos {
		if board[combo[0]] == player && board[combo[1]] == player && board[combo[2]] == player {
			return true
		}
	}

	return false
}

// CurrentPlayer - player one moves whenever it has no more marks than player two.
func CurrentPlayer(board entity.Board) entity.Cell {
	if board.Count(entity.PlayerOne) <= board.Count(entity.PlayerTwo) {
		return entity.PlayerOne
	}

	return entity.PlayerTwo
}

// IsTerminal - true when someone has won or the board is full.
func IsTerminal(board entity.Board) bool {
	return IsWin(board, entity.PlayerOne) || IsWin(board, entity.PlayerTwo) || board.Count(entity.Empty) == 0
}

// LegalMoves - one successor per empty cell, in ascending cell order.
// It does not look for a winner, callers stop at IsTerminal.
func LegalMoves(board entity.Board) []entity.Board {
	player := CurrentPlayer(board)
	moves := make([]entity.Board, 0, board.Count(entity.Empty))

	for i, cell := range board {
		if cell == entity.Empty {
			moves = append(moves, board.With(i, player))
		}
	}

	return moves
}

// Outcome - result of a terminal board.
func Outcome(board entity.Board) (entity.Outcome, error) {
	switch {
	case IsWin(board, entity.PlayerOne):
		return entity.PlayerOneWin, nil
	case IsWin(board, entity.PlayerTwo):
		return entity.PlayerTwoWin, nil
	case board.Count(entity.Empty) == 0:
		return entity.Draw, nil
	default:
		return 0, fmt.Errorf("%w: board %s is not terminal", apperror.ErrInvalidState, board)
	}
}

// MoveCell - index of the cell filled between a board and one of its successors.
func MoveCell(from, to entity.Board) (int, error) {
	cell := -1

	for i := range from {
		if from[i] == to[i] {
			continue
		}

		if cell != -1 || from[i] != entity.Empty {
			return -1, fmt.Errorf("%w: %s is not a successor of %s", apperror.ErrInvalidState, to, from)
		}

		cell = i
	}

	if cell == -1 {
		return -1, fmt.Errorf("%w: %s is not a successor of %s", apperror.ErrInvalidState, to, from)
	}

	return cell, nil
}
