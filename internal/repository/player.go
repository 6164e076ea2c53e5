package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/rocketscienceinc/quicktactoe/internal/entity"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
)

type PlayerRepository interface {
	Create(ctx context.Context, tx storage.Tx, player *entity.Player) error
	GetByID(ctx context.Context, tx storage.Tx, id entity.Identity) (*entity.Player, error)
	Update(ctx context.Context, tx storage.Tx, player *entity.Player) error
}

type dbPlayer struct{}

func NewPlayerRepository() PlayerRepository {
	return &dbPlayer{}
}

// Create stores a new player record; an identity gets at most one.
func (that *dbPlayer) Create(ctx context.Context, tx storage.Tx, player *entity.Player) error {
	err := tx.Create(ctx, PlayerAddress(player.Owner).Key, player)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return fmt.Errorf("%w: %s", apperror.ErrAlreadyExists, player.Owner)
	}

	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, tx storage.Tx, id entity.Identity) (*entity.Player, error) {
	address := PlayerAddress(id)

	var existingPlayer entity.Player
	err := tx.Get(ctx, address.Key, &existingPlayer)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	if existingPlayer.Bump != address.Bump || existingPlayer.Owner != id {
		return nil, fmt.Errorf("%w: player %s", ErrAddressMismatch, id)
	}

	return &existingPlayer, nil
}

func (that *dbPlayer) Update(ctx context.Context, tx storage.Tx, player *entity.Player) error {
	if err := tx.Put(ctx, PlayerAddress(player.Owner).Key, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
