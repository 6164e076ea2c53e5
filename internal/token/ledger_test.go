package token

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/rocketscienceinc/quicktactoe/internal/entity"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
	"github.com/rocketscienceinc/quicktactoe/testing/suite"
)

func newLedger(ctx context.Context, t *testing.T, store storage.Store) (*Ledger, MintAuthority) {
	t.Helper()

	ledger := NewLedger()
	auth := NewMintAuthority("program")

	require.NoError(t, store.Update(ctx, func(tx storage.Tx) error {
		return ledger.CreateMint(ctx, tx, auth)
	}))

	return ledger, auth
}

func balance(ctx context.Context, t *testing.T, store storage.Store, ledger *Ledger, owner entity.Identity) uint64 {
	t.Helper()

	var amount uint64
	require.NoError(t, store.View(ctx, func(tx storage.Tx) error {
		var err error
		amount, err = ledger.Balance(ctx, tx, owner)
		return err
	}))

	return amount
}

func TestLedger_CreateMint(t *testing.T) {
	t.Run("Twice", func(t *testing.T) {
		ctx, st := suite.New(t)
		ledger, auth := newLedger(ctx, t, st.Storage)

		// When: the mint is created again
		err := st.Storage.Update(ctx, func(tx storage.Tx) error {
			return ledger.CreateMint(ctx, tx, auth)
		})

		// Then: the existing mint is kept
		require.ErrorIs(t, err, ErrMintAlreadyExists)
	})

	t.Run("ZeroAuthority", func(t *testing.T) {
		ctx, st := suite.New(t)

		// When: creating a mint without a capability
		err := st.Storage.Update(ctx, func(tx storage.Tx) error {
			return NewLedger().CreateMint(ctx, tx, MintAuthority{})
		})

		// Then: it is refused
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}

func TestLedger_MintAndBurn(t *testing.T) {
	for _, driver := range suite.Drivers {
		t.Run(driver, func(t *testing.T) {
			ctx, st := suite.NewWithDriver(t, driver)
			ledger, auth := newLedger(ctx, t, st.Storage)

			// Given: alice receives 10 tokens
			require.NoError(t, st.Storage.Update(ctx, func(tx storage.Tx) error {
				return ledger.Mint(ctx, tx, auth, 10, "alice")
			}))

			// When: 3 are burned
			require.NoError(t, st.Storage.Update(ctx, func(tx storage.Tx) error {
				return ledger.Burn(ctx, tx, auth, 3, "alice")
			}))

			// Then: balance and supply both reflect it
			assert.Equal(t, uint64(7), balance(ctx, t, st.Storage, ledger, "alice"))

			require.NoError(t, st.Storage.View(ctx, func(tx storage.Tx) error {
				var mint entity.TokenMint
				require.NoError(t, tx.Get(ctx, MintAddress().Key, &mint))
				assert.Equal(t, uint64(7), mint.Supply)
				assert.Equal(t, "program", mint.Authority)
				return nil
			}))
		})
	}
}

func TestLedger_Errors(t *testing.T) {
	t.Run("InsufficientBalance", func(t *testing.T) {
		ctx, st := suite.New(t)
		ledger, auth := newLedger(ctx, t, st.Storage)

		// When: burning from an empty account
		err := st.Storage.Update(ctx, func(tx storage.Tx) error {
			return ledger.Burn(ctx, tx, auth, 1, "bob")
		})

		// Then: ErrInsufficientBalance is returned
		require.ErrorIs(t, err, apperror.ErrInsufficientBalance)
		assert.Equal(t, apperror.KindEconomic, apperror.KindOf(err))
	})

	t.Run("WrongAuthority", func(t *testing.T) {
		ctx, st := suite.New(t)
		ledger, _ := newLedger(ctx, t, st.Storage)

		// When: minting with another authority
		err := st.Storage.Update(ctx, func(tx storage.Tx) error {
			return ledger.Mint(ctx, tx, NewMintAuthority("intruder"), 5, "bob")
		})

		// Then: nothing is minted
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.Zero(t, balance(ctx, t, st.Storage, ledger, "bob"))
	})

	t.Run("MintMissing", func(t *testing.T) {
		ctx, st := suite.New(t)

		err := st.Storage.Update(ctx, func(tx storage.Tx) error {
			return NewLedger().Mint(ctx, tx, NewMintAuthority("program"), 1, "bob")
		})

		require.ErrorIs(t, err, ErrMintNotInitialized)
	})

	t.Run("ZeroAmount", func(t *testing.T) {
		ctx, st := suite.New(t)
		ledger, auth := newLedger(ctx, t, st.Storage)

		err := st.Storage.Update(ctx, func(tx storage.Tx) error {
			return ledger.Mint(ctx, tx, auth, 0, "bob")
		})

		require.ErrorIs(t, err, ErrZeroAmount)
	})

	t.Run("SupplyOverflow", func(t *testing.T) {
		ctx, st := suite.New(t)
		ledger, auth := newLedger(ctx, t, st.Storage)

		require.NoError(t, st.Storage.Update(ctx, func(tx storage.Tx) error {
			return ledger.Mint(ctx, tx, auth, ^uint64(0), "alice")
		}))

		// When: one more token is minted
		err := st.Storage.Update(ctx, func(tx storage.Tx) error {
			return ledger.Mint(ctx, tx, auth, 1, "bob")
		})

		// Then: the supply cannot wrap
		require.ErrorIs(t, err, ErrSupplyOverflow)
	})
}

func TestLedger_RollsBackWithTransaction(t *testing.T) {
	ctx, st := suite.New(t)
	ledger, auth := newLedger(ctx, t, st.Storage)

	// When: a mint is followed by a failure in the same transaction
	err := st.Storage.Update(ctx, func(tx storage.Tx) error {
		if err := ledger.Mint(ctx, tx, auth, 10, "alice"); err != nil {
			return err
		}
		return apperror.ErrGameNotFound
	})

	// Then: the minted tokens are gone too
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
	assert.Zero(t, balance(ctx, t, st.Storage, ledger, "alice"))
}
