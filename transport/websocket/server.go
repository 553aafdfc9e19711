package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/entity"
)

const (
	shutdownTimeout = 5 * time.Second
	readLimit       = 4096
)

var errUnknownAction = errors.New("unknown action")

type strategyUseCase interface {
	Advise(ctx context.Context, board string) (*entity.Advice, error)
	Successors(ctx context.Context, board string) ([]entity.SuccessorStats, error)
}

type Server struct {
	logger   *slog.Logger
	strategy strategyUseCase
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, request RequestPayload) (ResponsePayload, error)
}

func New(logger *slog.Logger, strategy strategyUseCase) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		strategy: strategy,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},

		handlers: make(map[string]func(context.Context, RequestPayload) (ResponsePayload, error)),
	}

	server.handlers[actionAdvise] = server.handleAdvise
	server.handlers[actionStats] = server.handleStats

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and answers messages one by one.
func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	// hijacked connections outlive http.Server.Shutdown
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	conn.SetReadLimit(readLimit)
	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Info("WebSocket connection closed", "reason", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)

			if err = that.sendMessage(conn, actionError, ResponsePayload{Error: "malformed message"}); err != nil {
				return err
			}

			continue
		}

		response := that.process(ctx, &message)
		if err = that.sendMessage(conn, message.Action, response); err != nil {
			return err
		}
	}
}

func (that *Server) process(ctx context.Context, message *Message) ResponsePayload {
	log := that.logger.With("method", "process", "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Error("error processing message", "error", errUnknownAction)
		return ResponsePayload{Error: errUnknownAction.Error()}
	}

	var request RequestPayload
	if err := json.Unmarshal(message.Payload, &request); err != nil {
		log.Error("failed to unmarshal payload", "error", err)
		return ResponsePayload{Error: "malformed payload"}
	}

	response, err := handler(ctx, request)
	if err != nil {
		log.Info("request rejected", "board", request.Board, "error", err)
		return ResponsePayload{Board: request.Board, Error: err.Error()}
	}

	return response
}

func (that *Server) handleAdvise(ctx context.Context, request RequestPayload) (ResponsePayload, error) {
	advice, err := that.strategy.Advise(ctx, request.Board)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to advise: %w", err)
	}

	return ResponsePayload{Board: request.Board, Advice: advice}, nil
}

func (that *Server) handleStats(ctx context.Context, request RequestPayload) (ResponsePayload, error) {
	stats, err := that.strategy.Successors(ctx, request.Board)
	if err != nil {
		return ResponsePayload{}, fmt.Errorf("failed to get successors: %w", err)
	}

	return ResponsePayload{Board: request.Board, Successors: stats}, nil
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
