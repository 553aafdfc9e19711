package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/strategy"
)

const (
	strategyKeyPrefix = "strategy:"
	pipelineBatch     = 512
	scanCount         = 1000
)

type StrategyRepository interface {
	SaveTable(ctx context.Context, table *strategy.Table) error
	GetByBoard(ctx context.Context, board entity.Board) ([]strategy.Successor, error)
	LoadTable(ctx context.Context) (*strategy.Table, error)
	Count(ctx context.Context) (int, error)
}

// successorRecord - persisted form, portable across languages.
type successorRecord struct {
	Board         string  `json:"board"`
	PlayerOneWins float64 `json:"p1_wins"`
	PlayerTwoWins float64 `json:"p2_wins"`
	Draw          float64 `json:"draw"`
}

type dbStrategy struct {
	client *redis.Client
}

func NewStrategyRepository(client *redis.Client) StrategyRepository {
	return &dbStrategy{
		client: client,
	}
}

func strategyKey(board entity.Board) string {
	return strategyKeyPrefix + board.String()
}

// SaveTable - writes one key per board, batched through pipelines.
func (that *dbStrategy) SaveTable(ctx context.Context, table *strategy.Table) error {
	pipe := that.client.Pipeline()

	for i, board := range table.Boards() {
		successors, err := table.Successors(board)
		if err != nil {
			return fmt.Errorf("failed to read strategy: %w", err)
		}

		recordsJSON, err := json.Marshal(toRecords(successors))
		if err != nil {
			return fmt.Errorf("could not marshal strategy: %w", err)
		}

		pipe.Set(ctx, strategyKey(board), recordsJSON, 0)

		if (i+1)%pipelineBatch == 0 {
			if _, err = pipe.Exec(ctx); err != nil {
				return fmt.Errorf("failed to set strategy: %w", err)
			}
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set strategy: %w", err)
	}

	return nil
}

func (that *dbStrategy) GetByBoard(ctx context.Context, board entity.Board) ([]strategy.Successor, error) {
	response, err := that.client.Get(ctx, strategyKey(board)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrStrategyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get strategy by board: %w", err)
	}

	successors, err := fromJSON(response)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", board, err)
	}

	return successors, nil
}

// LoadTable - reads back every stored board.
func (that *dbStrategy) LoadTable(ctx context.Context) (*strategy.Table, error) {
	keys, err := that.keys(ctx)
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return nil, apperror.ErrStrategyNotFound
	}

	entries := make(map[entity.Board][]strategy.Successor, len(keys))

	for from := 0; from < len(keys); from += pipelineBatch {
		batch := keys[from:min(from+pipelineBatch, len(keys))]

		values, err := that.client.MGet(ctx, batch...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get strategies: %w", err)
		}

		for i, value := range values {
			raw, ok := value.(string)
			if !ok {
				continue
			}

			board, err := entity.DecodeBoard(strings.TrimPrefix(batch[i], strategyKeyPrefix))
			if err != nil {
				return nil, fmt.Errorf("failed to decode key %s: %w", batch[i], err)
			}

			successors, err := fromJSON(raw)
			if err != nil {
				return nil, fmt.Errorf("board %s: %w", board, err)
			}

			entries[board] = successors
		}
	}

	return strategy.NewTable(entries), nil
}

func (that *dbStrategy) Count(ctx context.Context) (int, error) {
	keys, err := that.keys(ctx)
	if err != nil {
		return 0, err
	}

	return len(keys), nil
}

func (that *dbStrategy) keys(ctx context.Context) ([]string, error) {
	var keys []string

	iter := that.client.Scan(ctx, 0, strategyKeyPrefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan strategy keys: %w", err)
	}

	return keys, nil
}

func toRecords(successors []strategy.Successor) []successorRecord {
	records := make([]successorRecord, 0, len(successors))
	for _, successor := range successors {
		records = append(records, successorRecord{
			Board:         successor.Board.String(),
			PlayerOneWins: successor.Probabilities.PlayerOneWins,
			PlayerTwoWins: successor.Probabilities.PlayerTwoWins,
			Draw:          successor.Probabilities.Draw,
		})
	}

	return records
}

func fromJSON(raw string) ([]strategy.Successor, error) {
	var records []successorRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strategy: %w", err)
	}

	successors := make([]strategy.Successor, 0, len(records))
	for _, record := range records {
		board, err := entity.DecodeBoard(record.Board)
		if err != nil {
			return nil, fmt.Errorf("failed to decode successor: %w", err)
		}

		successors = append(successors, strategy.Successor{
			Board: board,
			Probabilities: entity.Probabilities{
				PlayerOneWins: record.PlayerOneWins,
				PlayerTwoWins: record.PlayerTwoWins,
				Draw:          record.Draw,
			},
		})
	}

	return successors, nil
}
