package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/rocketscienceinc/quicktactoe/internal/entity"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
)

type ProgramStateRepository interface {
	Create(ctx context.Context, tx storage.Tx, state *entity.ProgramState) error
	Get(ctx context.Context, tx storage.Tx) (*entity.ProgramState, error)
	Update(ctx context.Context, tx storage.Tx, state *entity.ProgramState) error
}

type dbProgramState struct{}

func NewProgramStateRepository() ProgramStateRepository {
	return &dbProgramState{}
}

func (that *dbProgramState) Create(ctx context.Context, tx storage.Tx, state *entity.ProgramState) error {
	err := tx.Create(ctx, ProgramStateAddress().Key, state)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return apperror.ErrAlreadyInitialized
	}

	if err != nil {
		return fmt.Errorf("failed to create program state: %w", err)
	}

	return nil
}

func (that *dbProgramState) Get(ctx context.Context, tx storage.Tx) (*entity.ProgramState, error) {
	address := ProgramStateAddress()

	var state entity.ProgramState
	err := tx.Get(ctx, address.Key, &state)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.ErrNotInitialized
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get program state: %w", err)
	}

	if state.Bump != address.Bump {
		return nil, fmt.Errorf("%w: program state", ErrAddressMismatch)
	}

	return &state, nil
}

func (that *dbProgramState) Update(ctx context.Context, tx storage.Tx, state *entity.ProgramState) error {
	if err := tx.Put(ctx, ProgramStateAddress().Key, state); err != nil {
		return fmt.Errorf("failed to update program state: %w", err)
	}

	return nil
}
