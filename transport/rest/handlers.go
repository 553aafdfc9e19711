package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
)

type strategyUseCase interface {
	Advise(ctx context.Context, board string) (*entity.Advice, error)
	Successors(ctx context.Context, board string) ([]entity.SuccessorStats, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type successorsResponse struct {
	Board      string                  `json:"board"`
	Successors []entity.SuccessorStats `json:"successors"`
}

type handlers struct {
	logger   *slog.Logger
	strategy strategyUseCase
}

func newHandlers(logger *slog.Logger, strategy strategyUseCase) *handlers {
	return &handlers{
		logger:   logger.With("component", "rest"),
		strategy: strategy,
	}
}

func (that *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) advice(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	advice, err := that.strategy.Advise(r.Context(), board)
	if err != nil {
		that.writeError(w, "advice", board, err)
		return
	}

	that.writeJSON(w, http.StatusOK, advice)
}

func (that *handlers) successors(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	stats, err := that.strategy.Successors(r.Context(), board)
	if err != nil {
		that.writeError(w, "successors", board, err)
		return
	}

	that.writeJSON(w, http.StatusOK, successorsResponse{Board: board, Successors: stats})
}

func (that *handlers) writeError(w http.ResponseWriter, method, board string, err error) {
	log := that.logger.With("method", method, "board", board)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrInvalidBoard):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidState):
		status = http.StatusUnprocessableEntity
	default:
		log.Error("failed to serve strategy", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
