package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-strategy/internal/config"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/repository"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/strategy"
	"github.com/rocketscienceinc/tictactoe-strategy/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-strategy/transport/rest"
	"github.com/rocketscienceinc/tictactoe-strategy/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	table, err := strategy.NewBuilder(logger, conf.Workers).Build()
	if err != nil {
		return fmt.Errorf("could not build strategy table: %w", err)
	}

	strategyManager := usecase.NewStrategyManager(logger, table, nil)

	if conf.Redis.Enabled {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		strategyRepo := repository.NewStrategyRepository(redisStorage.Connection)
		strategyManager = usecase.NewStrategyManager(logger, table, strategyRepo)

		if conf.Redis.PublishOnStart {
			if err = strategyManager.Publish(ctx); err != nil {
				return fmt.Errorf("could not publish strategy table: %w", err)
			}
		}
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, strategyManager)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, strategyManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
