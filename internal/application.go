package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/rocketscienceinc/quicktactoe/internal/config"
	"github.com/rocketscienceinc/quicktactoe/internal/repository"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
	"github.com/rocketscienceinc/quicktactoe/internal/telemetry"
	"github.com/rocketscienceinc/quicktactoe/internal/token"
	"github.com/rocketscienceinc/quicktactoe/internal/usecase"
	"github.com/rocketscienceinc/quicktactoe/transport/rest"
)

const serviceName = "quicktactoe"

var ErrAddrNotFound = errors.New("redis address string is empty")

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

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, conf.Telemetry.Endpoint)
	if err != nil {
		return fmt.Errorf("could not set up tracing: %w", err)
	}

	defer func() {
		if err = shutdownTracing(context.Background()); err != nil {
			log.Error("could not flush traces", "error", err)
		}
	}()

	store, err := openStorage(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = store.Close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	authority := token.NewMintAuthority(conf.Authority.Name)
	gameManager := usecase.NewGameManager(
		logger,
		store,
		repository.NewProgramStateRepository(),
		repository.NewPlayerRepository(),
		repository.NewGameRepository(),
		token.NewLedger(),
		authority,
		usecase.Economy{
			StarterGrant: conf.Economy.StarterGrant,
			EntryFee:     conf.Economy.EntryFee,
			Reward:       conf.Economy.Reward,
		},
	)

	state, err := gameManager.Initialize(ctx, authority)
	switch {
	case errors.Is(err, apperror.ErrAlreadyInitialized):
		log.Info("Program already initialized")
	case err != nil:
		return fmt.Errorf("could not initialize program: %w", err)
	default:
		log.Info("Program initialized", "version", state.Version)
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewHandler(logger, gameManager)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func openStorage(ctx context.Context, conf *config.Config) (storage.Store, error) {
	switch conf.Storage.Driver {
	case config.StorageSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(ctx, conf.SQLiteStoragePath)
		if err != nil {
			return nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		return sqliteStorage, nil
	default:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return redisStorage, nil
	}
}
