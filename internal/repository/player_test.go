package repository

import (
	"testing"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/rocketscienceinc/quicktactoe/internal/entity"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
	"github.com/rocketscienceinc/quicktactoe/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_Create(t *testing.T) {
	t.Run("Create_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository()

		// Given: a new player record
		player := entity.NewPlayer("alice", PlayerAddress("alice").Bump)

		// When: Create is called
		err := st.Storage.Update(ctx, func(tx storage.Tx) error {
			return playerRepo.Create(ctx, tx, player)
		})

		// Then: no error should be returned, and player is stored
		require.NoError(t, err)
	})

	t.Run("Create_Twice", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository()
		player := entity.NewPlayer("alice", PlayerAddress("alice").Bump)

		require.NoError(t, st.Storage.Update(ctx, func(tx storage.Tx) error {
			return playerRepo.Create(ctx, tx, player)
		}))

		// When: the same identity is created again
		err := st.Storage.Update(ctx, func(tx storage.Tx) error {
			return playerRepo.Create(ctx, tx, entity.NewPlayer("alice", PlayerAddress("alice").Bump))
		})

		// Then: ErrAlreadyExists is returned
		require.ErrorIs(t, err, apperror.ErrAlreadyExists)
	})
}

func TestPlayerRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository()

		// Given: a stored player with some history
		player := entity.NewPlayer("alice", PlayerAddress("alice").Bump)
		player.Record = entity.Record{Wins: 2, Losses: 1}
		player.StarterGrantReceived = true

		require.NoError(t, st.Storage.Update(ctx, func(tx storage.Tx) error {
			return playerRepo.Create(ctx, tx, player)
		}))

		// When: GetByID is called with existing ID
		var retrievedPlayer *entity.Player
		err := st.Storage.View(ctx, func(tx storage.Tx) error {
			var err error
			retrievedPlayer, err = playerRepo.GetByID(ctx, tx, "alice")
			return err
		})

		// Then: the retrieved player should match the saved player
		require.NoError(t, err)
		require.Equal(t, player, retrievedPlayer)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository()

		// When: GetByID is called with non-existent ID
		var retrievedPlayer *entity.Player
		err := st.Storage.View(ctx, func(tx storage.Tx) error {
			var err error
			retrievedPlayer, err = playerRepo.GetByID(ctx, tx, "nobody")
			return err
		})

		// Then: an ErrPlayerNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
		assert.Nil(t, retrievedPlayer)
	})
}
