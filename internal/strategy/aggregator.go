package strategy

import (
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/tictactoe"
)

const sumTolerance = 1e-9

// Tally counts the outcomes of every game passing through a board.
type Tally struct {
	PlayerOneWins uint64
	PlayerTwoWins uint64
	Draws         uint64
}

func (that *Tally) Add(outcome entity.Outcome) {
	switch outcome {
	case entity.PlayerOneWin:
		that.PlayerOneWins++
	case entity.PlayerTwoWin:
		that.PlayerTwoWins++
	case entity.Draw:
		that.Draws++
	}
}

func (that Tally) Merge(other Tally) Tally {
	return Tally{
		PlayerOneWins: that.PlayerOneWins + other.PlayerOneWins,
		PlayerTwoWins: that.PlayerTwoWins + other.PlayerTwoWins,
		Draws:         that.Draws + other.Draws,
	}
}

func (that Tally) Total() uint64 {
	return that.PlayerOneWins + that.PlayerTwoWins + that.Draws
}

// Probabilities - each count divided by the total. An empty tally means the
// enumeration is broken and is reported as ErrInvalidState.
func (that Tally) Probabilities() (entity.Probabilities, error) {
	total := that.Total()
	if total == 0 {
		return entity.Probabilities{}, fmt.Errorf("%w: empty tally", apperror.ErrInvalidState)
	}

	return entity.Probabilities{
		PlayerOneWins: float64(that.PlayerOneWins) / float64(total),
		PlayerTwoWins: float64(that.PlayerTwoWins) / float64(total),
		Draw:          float64(that.Draws) / float64(total),
	}, nil
}

// Tallies is the accumulator keyed by board.
type Tallies map[entity.Board]Tally

// Merge - adds other into that. Order of merges never changes the result.
func (that Tallies) Merge(other Tallies) {
	for board, tally := range other {
		that[board] = that[board].Merge(tally)
	}
}

// Aggregator turns game paths into a strategy table.
type Aggregator struct {
	workers int
}

func NewAggregator(workers int) *Aggregator {
	return &Aggregator{
		workers: max(workers, 1),
	}
}

// Tally - every board of a path, the empty and the terminal one included,
// is credited with the outcome of that path.
func (that *Aggregator) Tally(paths []GamePath) (Tallies, error) {
	var (
		workers = distribute(len(paths), that.workers)
		partial = make([]Tallies, len(workers))
		group   errgroup.Group
	)

	for i, idxs := range workers {
		group.Go(func() error {
			tallies, err := tallyPaths(paths, idxs)
			if err != nil {
				return err
			}

			partial[i] = tallies

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to tally paths: %w", err)
	}

	result := make(Tallies)
	for _, tallies := range partial {
		result.Merge(tallies)
	}

	return result, nil
}

func tallyPaths(paths []GamePath, idxs []int) (Tallies, error) {
	tallies := make(Tallies)

	for _, idx := range idxs {
		path := paths[idx]
		outcome, err := tictactoe.Outcome(path.Last())
		if err != nil {
			return nil, fmt.Errorf("unfinished game path: %w", err)
		}

		for _, board := range path {
			tally := tallies[board]
			tally.Add(outcome)
			tallies[board] = tally
		}
	}

	return tallies, nil
}

// Build - maps every non-terminal tallied board to the probabilities of its successors.
func (that *Aggregator) Build(tallies Tallies) (*Table, error) {
	probabilities := make(map[entity.Board]entity.Probabilities, len(tallies))

	for board, tally := range tallies {
		probs, err := tally.Probabilities()
		if err != nil {
			return nil, fmt.Errorf("board %s: %w", board, err)
		}

		if !scalar.EqualWithinAbs(floats.Sum([]float64{probs.PlayerOneWins, probs.PlayerTwoWins, probs.Draw}), 1, sumTolerance) {
			return nil, fmt.Errorf("%w: probabilities of %s sum to %v", apperror.ErrInvalidState, board, probs.Sum())
		}

		probabilities[board] = probs
	}

	entries := make(map[entity.Board][]Successor)

	for board := range tallies {
		if tictactoe.IsTerminal(board) {
			continue
		}

		moves := tictactoe.LegalMoves(board)
		successors := make([]Successor, 0, len(moves))

		for _, move := range moves {
			probs, ok := probabilities[move]
			if !ok {
				return nil, fmt.Errorf("%w: successor %s of %s was never visited", apperror.ErrInvalidState, move, board)
			}

			successors = append(successors, Successor{Board: move, Probabilities: probs})
		}

		entries[board] = successors
	}

	return &Table{entries: entries}, nil
}
