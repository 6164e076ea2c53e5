package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/rocketscienceinc/quicktactoe/internal/entity"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
)

type GameRepository interface {
	Create(ctx context.Context, tx storage.Tx, game *entity.Game) error
	GetByID(ctx context.Context, tx storage.Tx, id uint64) (*entity.Game, error)
	Update(ctx context.Context, tx storage.Tx, game *entity.Game) error
}

type dbGame struct{}

func NewGameRepository() GameRepository {
	return &dbGame{}
}

// Create fails with storage.ErrAlreadyExists when a game already sits at the id's address.
func (that *dbGame) Create(ctx context.Context, tx storage.Tx, game *entity.Game) error {
	if err := tx.Create(ctx, GameAddress(game.ID).Key, game); err != nil {
		return fmt.Errorf("failed to create game %d: %w", game.ID, err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, tx storage.Tx, id uint64) (*entity.Game, error) {
	address := GameAddress(id)

	var existingGame entity.Game
	err := tx.Get(ctx, address.Key, &existingGame)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", apperror.ErrGameNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if existingGame.Bump != address.Bump || existingGame.ID != id {
		return nil, fmt.Errorf("%w: game %d", ErrAddressMismatch, id)
	}

	return &existingGame, nil
}

func (that *dbGame) Update(ctx context.Context, tx storage.Tx, game *entity.Game) error {
	if err := tx.Put(ctx, GameAddress(game.ID).Key, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
