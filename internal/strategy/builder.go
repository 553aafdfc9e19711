package strategy

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
)

// Builder runs the enumeration and aggregation pipeline.
type Builder struct {
	logger  *slog.Logger
	workers int
}

func NewBuilder(logger *slog.Logger, workers int) *Builder {
	return &Builder{
		logger:  logger.With("component", "strategy"),
		workers: max(workers, 1),
	}
}

// Build - either returns a complete table or an error, never a partial one.
func (that *Builder) Build() (*Table, error) {
	log := that.logger.With("method", "Build", "workers", that.workers)
	start := time.Now()

	paths := NewEnumerator(that.workers).Enumerate()
	log.Info("game paths enumerated", "paths", len(paths), "elapsed", time.Since(start))

	aggregator := NewAggregator(that.workers)

	tallies, err := aggregator.Tally(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate game paths: %w", err)
	}

	root := tallies[entity.EmptyBoard]
	log.Info("outcomes tallied",
		"boards", len(tallies),
		"player_one_wins", root.PlayerOneWins,
		"player_two_wins", root.PlayerTwoWins,
		"draws", root.Draws,
	)

	table, err := aggregator.Build(tallies)
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy table: %w", err)
	}

	log.Info("strategy table built", "entries", table.Len(), "elapsed", time.Since(start))

	return table, nil
}

var defaultTable = sync.OnceValues(func() (*Table, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBuilder(logger, 1).Build()
})

// BuildStrategyTable - the table is computed once per process and shared afterwards.
func BuildStrategyTable() (*Table, error) {
	return defaultTable()
}
