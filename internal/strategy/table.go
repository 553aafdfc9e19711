package strategy

import (
	"fmt"
	"maps"
	"slices"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
)

// Successor is one candidate move and the outcome frequencies of the games through it.
type Successor struct {
	Board         entity.Board         `json:"board"`
	Probabilities entity.Probabilities `json:"probabilities"`
}

// Table maps every reachable non-terminal board to its successors, in legal-move order.
// It is never modified after construction and may be shared between goroutines.
type Table struct {
	entries map[entity.Board][]Successor
}

// NewTable - builds a table from already derived entries, e.g. loaded from storage.
func NewTable(entries map[entity.Board][]Successor) *Table {
	copied := make(map[entity.Board][]Successor, len(entries))
	for board, successors := range entries {
		copied[board] = slices.Clone(successors)
	}

	return &Table{entries: copied}
}

// Successors - returns a copy of the successors of a board.
func (that *Table) Successors(board entity.Board) ([]Successor, error) {
	successors, ok := that.entries[board]
	if !ok {
		return nil, fmt.Errorf("%w: board %s has no strategy entry", apperror.ErrInvalidState, board)
	}

	return slices.Clone(successors), nil
}

func (that *Table) Contains(board entity.Board) bool {
	_, ok := that.entries[board]
	return ok
}

func (that *Table) Len() int {
	return len(that.entries)
}

// Boards - keys in ascending canonical order.
func (that *Table) Boards() []entity.Board {
	return slices.SortedFunc(maps.Keys(that.entries), func(a, b entity.Board) int {
		return slices.Compare(a[:], b[:])
	})
}

func (that *Table) Equal(other *Table) bool {
	return maps.EqualFunc(that.entries, other.entries, func(a, b []Successor) bool {
		return slices.Equal(a, b)
	})
}
