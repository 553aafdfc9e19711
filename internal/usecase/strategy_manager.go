package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/strategy"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/tictactoe"
)

// presentationPlaces - probabilities are rounded only when they leave the service.
const presentationPlaces = 5

var ErrPublishingDisabled = errors.New("strategy publishing is disabled")

type strategyRepo interface {
	SaveTable(ctx context.Context, table *strategy.Table) error
	GetByBoard(ctx context.Context, board entity.Board) ([]strategy.Successor, error)
	LoadTable(ctx context.Context) (*strategy.Table, error)
	Count(ctx context.Context) (int, error)
}

type StrategyManager struct {
	logger *slog.Logger
	table  *strategy.Table
	repo   strategyRepo
}

// NewStrategyManager - repo may be nil when the table is not published anywhere.
func NewStrategyManager(logger *slog.Logger, table *strategy.Table, repo strategyRepo) *StrategyManager {
	return &StrategyManager{
		logger: logger,
		table:  table,
		repo:   repo,
	}
}

// Advise - picks the next move for the player whose turn it is on the given board.
func (that *StrategyManager) Advise(_ context.Context, rawBoard string) (*entity.Advice, error) {
	board, err := entity.ParseBoard(rawBoard)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board: %w", err)
	}

	best, err := strategy.NextBestMove(that.table, board)
	if err != nil {
		return nil, fmt.Errorf("failed to pick next move: %w", err)
	}

	candidates, err := that.successorStats(board)
	if err != nil {
		return nil, err
	}

	advice := &entity.Advice{
		Board:      board.String(),
		Player:     tictactoe.CurrentPlayer(board).String(),
		Candidates: candidates,
	}

	for _, candidate := range candidates {
		if candidate.Board == best.String() {
			advice.Move = candidate
			break
		}
	}

	return advice, nil
}

// Successors - statistics of every legal move from the given board.
func (that *StrategyManager) Successors(_ context.Context, rawBoard string) ([]entity.SuccessorStats, error) {
	board, err := entity.ParseBoard(rawBoard)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board: %w", err)
	}

	return that.successorStats(board)
}

// Publish - stores the whole table so other services can read it by board string.
// A stored table equal to the built one is left untouched.
func (that *StrategyManager) Publish(ctx context.Context) error {
	log := that.logger.With("method", "Publish")

	if that.repo == nil {
		return ErrPublishingDisabled
	}

	stored, err := that.repo.LoadTable(ctx)
	switch {
	case err == nil && stored.Equal(that.table):
		log.Info("stored strategy table is up to date", "entries", stored.Len())
		return nil
	case err != nil && !errors.Is(err, apperror.ErrStrategyNotFound):
		return fmt.Errorf("failed to load stored strategy table: %w", err)
	}

	if err = that.repo.SaveTable(ctx, that.table); err != nil {
		return fmt.Errorf("failed to save strategy table: %w", err)
	}

	if err = that.verifyOpening(ctx); err != nil {
		return err
	}

	count, err := that.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count stored strategies: %w", err)
	}

	log.Info("strategy table published", "entries", that.table.Len(), "stored", count)

	return nil
}

// verifyOpening - reads the empty board entry back after a save.
func (that *StrategyManager) verifyOpening(ctx context.Context) error {
	stored, err := that.repo.GetByBoard(ctx, entity.EmptyBoard)
	if err != nil {
		return fmt.Errorf("failed to read back opening strategy: %w", err)
	}

	expected, err := that.table.Successors(entity.EmptyBoard)
	if err != nil {
		return fmt.Errorf("failed to get opening strategy: %w", err)
	}

	if !slices.Equal(stored, expected) {
		return fmt.Errorf("%w: stored opening strategy differs from the built one", apperror.ErrInvalidState)
	}

	return nil
}

func (that *StrategyManager) successorStats(board entity.Board) ([]entity.SuccessorStats, error) {
	successors, err := that.table.Successors(board)
	if err != nil {
		return nil, fmt.Errorf("failed to get successors: %w", err)
	}

	stats := make([]entity.SuccessorStats, 0, len(successors))
	for _, successor := range successors {
		cell, err := tictactoe.MoveCell(board, successor.Board)
		if err != nil {
			return nil, fmt.Errorf("failed to locate move: %w", err)
		}

		stats = append(stats, entity.SuccessorStats{
			Board:         successor.Board.String(),
			Cell:          cell,
			Probabilities: successor.Probabilities.Round(presentationPlaces),
		})
	}

	return stats, nil
}
