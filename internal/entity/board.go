package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/apperror"
)

// Cell is the content of a single board square.
type Cell uint8

const (
	Empty Cell = iota
	PlayerOne
	PlayerTwo
)

// BoardSize is the number of cells on the grid, addressed 0-8 in row-major order.
const BoardSize = 9

// Board is an immutable game state. It is a comparable value and is used directly as a map key.
type Board [BoardSize]Cell

// EmptyBoard is the starting position of every game.
var EmptyBoard = Board{}

func (that Cell) String() string {
	switch that {
	case Empty:
		return "empty"
	case PlayerOne:
		return "one"
	case PlayerTwo:
		return "two"
	default:
		return fmt.Sprintf("cell(%d)", uint8(that))
	}
}

// DecodeBoard reads the canonical 9-character form over {'0','1','2'}.
// Only the length and the alphabet are checked.
func DecodeBoard(s string) (Board, error) {
	var board Board

	if len(s) != BoardSize {
		return board, fmt.Errorf("%w: %q has length %d, want %d", apperror.ErrInvalidBoard, s, len(s), BoardSize)
	}

	for i := range len(s) {
		switch s[i] {
		case '0':
			board[i] = Empty
		case '1':
			board[i] = PlayerOne
		case '2':
			board[i] = PlayerTwo
		default:
			return Board{}, fmt.Errorf("%w: %q has unexpected symbol %q at %d", apperror.ErrInvalidBoard, s, s[i], i)
		}
	}

	return board, nil
}

// ParseBoard decodes a board and checks that it respects turn alternation:
// player one moves first, so it has either as many marks as player two or one more.
func ParseBoard(s string) (Board, error) {
	board, err := DecodeBoard(s)
	if err != nil {
		return Board{}, err
	}

	diff := board.Count(PlayerOne) - board.Count(PlayerTwo)
	if diff != 0 && diff != 1 {
		return Board{}, fmt.Errorf("%w: %q breaks turn alternation", apperror.ErrInvalidBoard, s)
	}

	return board, nil
}

// MustDecodeBoard - like DecodeBoard but panics, for fixtures only.
func MustDecodeBoard(s string) Board {
	board, err := DecodeBoard(s)
	if err != nil {
		panic(err)
	}

	return board
}

func (that Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardSize)

	for _, cell := range that {
		sb.WriteByte('0' + byte(cell))
	}

	return sb.String()
}

// Count returns the number of cells holding the given value.
func (that Board) Count(cell Cell) int {
	n := 0
	for _, c := range that {
		if c == cell {
			n++
		}
	}

	return n
}

// With returns a copy of the board with one cell replaced.
func (that Board) With(index int, cell Cell) Board {
	that[index] = cell
	return that
}

func (that Board) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Board) UnmarshalText(text []byte) error {
	board, err := DecodeBoard(string(text))
	if err != nil {
		return err
	}

	*that = board

	return nil
}
