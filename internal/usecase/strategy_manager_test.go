package usecase

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/strategy"
)

var errRedisDown = errors.New("redis down")

type mockStrategyRepo struct {
	mock.Mock
}

func (that *mockStrategyRepo) SaveTable(ctx context.Context, table *strategy.Table) error {
	args := that.Called(ctx, table)
	return args.Error(0)
}

func (that *mockStrategyRepo) GetByBoard(ctx context.Context, board entity.Board) ([]strategy.Successor, error) {
	args := that.Called(ctx, board)
	successors, _ := args.Get(0).([]strategy.Successor)
	return successors, args.Error(1)
}

func (that *mockStrategyRepo) LoadTable(ctx context.Context) (*strategy.Table, error) {
	args := that.Called(ctx)
	table, _ := args.Get(0).(*strategy.Table)
	return table, args.Error(1)
}

func (that *mockStrategyRepo) Count(ctx context.Context) (int, error) {
	args := that.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newManager(t *testing.T, repo strategyRepo) *StrategyManager {
	t.Helper()

	table, err := strategy.BuildStrategyTable()
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	return NewStrategyManager(logger, table, repo)
}

func TestStrategyManager_Advise(t *testing.T) {
	ctx := context.Background()

	t.Run("Advises the center on the empty board", func(t *testing.T) {
		// Given: a manager over the full table
		manager := newManager(t, nil)

		// When: asking for advice on the empty board
		advice, err := manager.Advise(ctx, "000000000")

		// Then: player one should be told to take the center
		require.NoError(t, err)
		assert.Equal(t, "one", advice.Player)
		assert.Equal(t, "000010000", advice.Move.Board)
		assert.Equal(t, 4, advice.Move.Cell)
		assert.InDelta(t, 15648.0/25872.0, advice.Move.Probabilities.PlayerOneWins, 1e-5)
		assert.Len(t, advice.Candidates, 9)
	})

	t.Run("Advises player two on its turn", func(t *testing.T) {
		manager := newManager(t, nil)

		// When: asking for advice after player one took the center
		advice, err := manager.Advise(ctx, "000010000")

		// Then: the move should be a mark of player two
		require.NoError(t, err)
		assert.Equal(t, "two", advice.Player)
		assert.Len(t, advice.Candidates, 8)
		assert.Equal(t, byte('2'), advice.Move.Board[advice.Move.Cell])
	})

	t.Run("Returns ErrInvalidBoard on malformed input", func(t *testing.T) {
		manager := newManager(t, nil)

		_, err := manager.Advise(ctx, "12")

		assert.ErrorIs(t, err, apperror.ErrInvalidBoard)
	})

	t.Run("Returns ErrInvalidBoard when turns do not alternate", func(t *testing.T) {
		manager := newManager(t, nil)

		_, err := manager.Advise(ctx, "110000000")

		assert.ErrorIs(t, err, apperror.ErrInvalidBoard)
	})

	t.Run("Returns ErrInvalidState on a finished game", func(t *testing.T) {
		manager := newManager(t, nil)

		_, err := manager.Advise(ctx, "111220000")

		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})
}

func TestStrategyManager_Successors(t *testing.T) {
	ctx := context.Background()
	manager := newManager(t, nil)

	// When: listing successors of a mid-game board
	stats, err := manager.Successors(ctx, "120210000")

	// Then: one entry per empty cell, in cell order
	require.NoError(t, err)
	require.Len(t, stats, 5)

	cells := make([]int, 0, len(stats))
	for _, s := range stats {
		cells = append(cells, s.Cell)
		assert.InDelta(t, 1.0, s.Probabilities.Sum(), 1e-4)
	}
	assert.Equal(t, []int{2, 5, 6, 7, 8}, cells)
}

func TestStrategyManager_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves the table when nothing is stored", func(t *testing.T) {
		// Given: an empty repository that accepts the table
		repo := &mockStrategyRepo{}
		manager := newManager(t, repo)

		opening, err := manager.table.Successors(entity.EmptyBoard)
		require.NoError(t, err)

		repo.On("LoadTable", mock.Anything).Return(nil, apperror.ErrStrategyNotFound).Once()
		repo.On("SaveTable", mock.Anything, mock.AnythingOfType("*strategy.Table")).Return(nil).Once()
		repo.On("GetByBoard", mock.Anything, entity.EmptyBoard).Return(opening, nil).Once()
		repo.On("Count", mock.Anything).Return(4520, nil).Once()

		// When: publishing
		err = manager.Publish(ctx)

		// Then: the table should be handed to the repository and read back
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Skips an up to date table", func(t *testing.T) {
		// Given: a repository already holding the same table
		repo := &mockStrategyRepo{}
		manager := newManager(t, repo)

		repo.On("LoadTable", mock.Anything).Return(manager.table, nil).Once()

		// When: publishing
		err := manager.Publish(ctx)

		// Then: nothing should be written
		require.NoError(t, err)
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "SaveTable", mock.Anything, mock.Anything)
	})

	t.Run("Overwrites a stale table", func(t *testing.T) {
		// Given: a repository holding a different table
		repo := &mockStrategyRepo{}
		manager := newManager(t, repo)

		opening, err := manager.table.Successors(entity.EmptyBoard)
		require.NoError(t, err)

		stale := strategy.NewTable(map[entity.Board][]strategy.Successor{entity.EmptyBoard: opening[:1]})

		repo.On("LoadTable", mock.Anything).Return(stale, nil).Once()
		repo.On("SaveTable", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("GetByBoard", mock.Anything, entity.EmptyBoard).Return(opening, nil).Once()
		repo.On("Count", mock.Anything).Return(4520, nil).Once()

		// When: publishing
		err = manager.Publish(ctx)

		// Then: the table should be saved again
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Returns ErrInvalidState if the stored opening differs", func(t *testing.T) {
		repo := &mockStrategyRepo{}
		manager := newManager(t, repo)

		opening, err := manager.table.Successors(entity.EmptyBoard)
		require.NoError(t, err)

		repo.On("LoadTable", mock.Anything).Return(nil, apperror.ErrStrategyNotFound).Once()
		repo.On("SaveTable", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("GetByBoard", mock.Anything, entity.EmptyBoard).Return(opening[1:], nil).Once()

		err = manager.Publish(ctx)

		require.ErrorIs(t, err, apperror.ErrInvalidState)
		repo.AssertExpectations(t)
	})

	t.Run("Returns error if loading fails", func(t *testing.T) {
		repo := &mockStrategyRepo{}
		manager := newManager(t, repo)

		repo.On("LoadTable", mock.Anything).Return(nil, errRedisDown).Once()

		err := manager.Publish(ctx)

		require.ErrorIs(t, err, errRedisDown)
		repo.AssertNotCalled(t, "SaveTable", mock.Anything, mock.Anything)
	})

	t.Run("Returns error if the repository fails", func(t *testing.T) {
		repo := &mockStrategyRepo{}
		manager := newManager(t, repo)

		repo.On("LoadTable", mock.Anything).Return(nil, apperror.ErrStrategyNotFound).Once()
		repo.On("SaveTable", mock.Anything, mock.Anything).Return(errRedisDown).Once()

		err := manager.Publish(ctx)

		require.ErrorIs(t, err, errRedisDown)
		repo.AssertExpectations(t)
	})

	t.Run("Disabled without a repository", func(t *testing.T) {
		manager := newManager(t, nil)

		err := manager.Publish(ctx)

		assert.ErrorIs(t, err, ErrPublishingDisabled)
	})
}
