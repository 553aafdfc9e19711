package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/strategy"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/usecase"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	table, err := strategy.BuildStrategyTable()
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	return NewRouter(logger, usecase.NewStrategyManager(logger, table, nil))
}

func TestRouter_Ping(t *testing.T) {
	router := newTestRouter(t)

	// When: calling the ping endpoint
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// Then: it should answer pong
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRouter_Advice(t *testing.T) {
	router := newTestRouter(t)

	t.Run("Returns the best move", func(t *testing.T) {
		// When: asking for advice on the empty board
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/advice/000000000", nil))

		// Then: the center should be advised
		require.Equal(t, http.StatusOK, rec.Code)

		var advice entity.Advice
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&advice))
		assert.Equal(t, "000010000", advice.Move.Board)
		assert.Equal(t, 4, advice.Move.Cell)
	})

	t.Run("Bad request on invalid board", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/advice/12x", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unprocessable on finished game", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/advice/111220000", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRouter_Strategy(t *testing.T) {
	router := newTestRouter(t)

	// When: listing successors of a board
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/strategy/100000000", nil))

	// Then: every reply of player two should be listed
	require.Equal(t, http.StatusOK, rec.Code)

	var body successorsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "100000000", body.Board)
	assert.Len(t, body.Successors, 8)
	assert.Equal(t, "120000000", body.Successors[0].Board)
}
