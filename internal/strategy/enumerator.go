package strategy

import (
	"github.com/sw965/omw/parallel"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/tictactoe"
)

// maxRounds - every move fills a cell, so nine rounds always reach a terminal board.
const maxRounds = entity.BoardSize

// GamePath is a sequence of boards from the empty board to a terminal one.
type GamePath []entity.Board

func (that GamePath) Last() entity.Board {
	return that[len(that)-1]
}

// Enumerator generates every game reachable under alternating legal play.
type Enumerator struct {
	workers int
}

func NewEnumerator(workers int) *Enumerator {
	return &Enumerator{
		workers: max(workers, 1),
	}
}

// Enumerate - expands the frontier one round at a time. Paths ending on a terminal
// board are carried forward unchanged, the others are replaced by one extension per legal move.
func (that *Enumerator) Enumerate() []GamePath {
	paths := []GamePath{{entity.EmptyBoard}}

	for range maxRounds {
		paths = that.expandRound(paths)
	}

	return paths
}

// expandRound - every worker writes the extensions of its paths into their own slots,
// which are joined in path order, so the result does not depend on the number of workers.
func (that *Enumerator) expandRound(paths []GamePath) []GamePath {
	if that.workers == 1 {
		return expand(paths)
	}

	extensions := make([][]GamePath, len(paths))

	var group errgroup.Group
	for _, idxs := range distribute(len(paths), that.workers) {
		group.Go(func() error {
			for _, idx := range idxs {
				extensions[idx] = expand(paths[idx : idx+1])
			}

			return nil
		})
	}

	// expand never fails
	_ = group.Wait()

	total := 0
	for _, chunk := range extensions {
		total += len(chunk)
	}

	next := make([]GamePath, 0, total)
	for _, chunk := range extensions {
		next = append(next, chunk...)
	}

	return next
}

// distribute - indices of n items spread over at most workers goroutines.
func distribute(n, workers int) [][]int {
	if n == 0 {
		return nil
	}

	return parallel.DistributeIndicesEvenly(n, min(workers, n))
}

func expand(paths []GamePath) []GamePath {
	next := make([]GamePath, 0, len(paths))

	for _, path := range paths {
		last := path.Last()
		if tictactoe.IsTerminal(last) {
			next = append(next, path)
			continue
		}

		for _, move := range tictactoe.LegalMoves(last) {
			extended := make(GamePath, len(path), len(path)+1)
			copy(extended, path)
			next = append(next, append(extended, move))
		}
	}

	return next
}
