package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
	"github.com/rocketscienceinc/quicktactoe/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Value int `json:"value"`
}

var errAbort = errors.New("abort")

func TestDerive(t *testing.T) {
	t.Run("Same seeds give the same address", func(t *testing.T) {
		a := storage.Derive("player", []byte("alice"))
		b := storage.Derive("player", []byte("alice"))

		assert.Equal(t, a, b)
	})

	t.Run("Different seeds or namespaces give different keys", func(t *testing.T) {
		alice := storage.Derive("player", []byte("alice"))
		bob := storage.Derive("player", []byte("bob"))
		other := storage.Derive("token_account", []byte("alice"))

		assert.NotEqual(t, alice.Key, bob.Key)
		assert.NotEqual(t, alice.Key, other.Key)
		assert.Contains(t, string(alice.Key), "player:")
	})
}

func TestStore(t *testing.T) {
	for _, driver := range suite.Drivers {
		t.Run(driver, func(t *testing.T) {
			t.Run("Create then Get", func(t *testing.T) {
				ctx, st := suite.NewWithDriver(t, driver)

				// Given: a record created in one transaction
				err := st.Storage.Update(ctx, func(tx storage.Tx) error {
					return tx.Create(ctx, "k", counter{Value: 1})
				})
				require.NoError(t, err)

				// When: reading it back in another one
				var got counter
				err = st.Storage.View(ctx, func(tx storage.Tx) error {
					return tx.Get(ctx, "k", &got)
				})

				// Then: the value round-trips
				require.NoError(t, err)
				assert.Equal(t, 1, got.Value)
			})

			t.Run("Create on an occupied key fails", func(t *testing.T) {
				ctx, st := suite.NewWithDriver(t, driver)

				require.NoError(t, st.Storage.Update(ctx, func(tx storage.Tx) error {
					return tx.Create(ctx, "k", counter{Value: 1})
				}))

				// When: creating the same key again
				err := st.Storage.Update(ctx, func(tx storage.Tx) error {
					return tx.Create(ctx, "k", counter{Value: 2})
				})

				// Then: ErrAlreadyExists and the first value survives
				require.ErrorIs(t, err, storage.ErrAlreadyExists)
				assertValue(ctx, t, st.Storage, "k", 1)
			})

			t.Run("Missing key", func(t *testing.T) {
				ctx, st := suite.NewWithDriver(t, driver)

				err := st.Storage.View(ctx, func(tx storage.Tx) error {
					var got counter
					return tx.Get(ctx, "missing", &got)
				})

				require.ErrorIs(t, err, storage.ErrNotFound)
			})

			t.Run("Failed transaction keeps nothing", func(t *testing.T) {
				ctx, st := suite.NewWithDriver(t, driver)

				require.NoError(t, st.Storage.Update(ctx, func(tx storage.Tx) error {
					return tx.Create(ctx, "a", counter{Value: 1})
				}))

				// When: a transaction writes two keys and then fails
				err := st.Storage.Update(ctx, func(tx storage.Tx) error {
					if err := tx.Put(ctx, "a", counter{Value: 2}); err != nil {
						return err
					}
					if err := tx.Create(ctx, "b", counter{Value: 2}); err != nil {
						return err
					}
					return errAbort
				})

				// Then: neither write is visible
				require.ErrorIs(t, err, errAbort)
				assertValue(ctx, t, st.Storage, "a", 1)
				err = st.Storage.View(ctx, func(tx storage.Tx) error {
					exists, err := tx.Exists(ctx, "b")
					require.NoError(t, err)
					assert.False(t, exists)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("Reads see own writes", func(t *testing.T) {
				ctx, st := suite.NewWithDriver(t, driver)

				err := st.Storage.Update(ctx, func(tx storage.Tx) error {
					require.NoError(t, tx.Create(ctx, "k", counter{Value: 5}))

					var got counter
					require.NoError(t, tx.Get(ctx, "k", &got))
					assert.Equal(t, 5, got.Value)

					exists, err := tx.Exists(ctx, "k")
					require.NoError(t, err)
					assert.True(t, exists)

					return tx.Create(ctx, "k", counter{Value: 6})
				})

				require.ErrorIs(t, err, storage.ErrAlreadyExists)
			})

			t.Run("View is read-only", func(t *testing.T) {
				ctx, st := suite.NewWithDriver(t, driver)

				err := st.Storage.View(ctx, func(tx storage.Tx) error {
					return tx.Put(ctx, "k", counter{Value: 1})
				})

				require.ErrorIs(t, err, storage.ErrReadOnly)
			})
		})
	}
}

func TestRedisStorage_Conflict(t *testing.T) {
	ctx, st := suite.New(t)

	require.NoError(t, st.Storage.Update(ctx, func(tx storage.Tx) error {
		return tx.Create(ctx, "k", counter{Value: 1})
	}))

	// When: the key changes between this transaction's read and its commit
	err := st.Storage.Update(ctx, func(tx storage.Tx) error {
		var got counter
		if err := tx.Get(ctx, "k", &got); err != nil {
			return err
		}

		require.NoError(t, st.Redis.Set(ctx, "k", `{"value":10}`, 0).Err())

		return tx.Put(ctx, "k", counter{Value: got.Value + 1})
	})

	// Then: the commit is refused and the concurrent write stands
	require.ErrorIs(t, err, storage.ErrConflict)
	assertValue(ctx, t, st.Storage, "k", 10)
}

func TestRedisStorage_CreateRace(t *testing.T) {
	ctx, st := suite.New(t)

	// When: another writer creates the key after this transaction saw it absent
	err := st.Storage.Update(ctx, func(tx storage.Tx) error {
		exists, err := tx.Exists(ctx, "game")
		require.NoError(t, err)
		require.False(t, exists)

		require.NoError(t, st.Redis.Set(ctx, "game", `{"value":1}`, 0).Err())

		return tx.Create(ctx, "game", counter{Value: 2})
	})

	// Then: exactly one creation wins
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrConflict) || errors.Is(err, storage.ErrAlreadyExists), err.Error())
	assertValue(ctx, t, st.Storage, "game", 1)
}

func assertValue(ctx context.Context, t *testing.T, store storage.Store, key storage.Key, expected int) {
	t.Helper()

	var got counter
	err := store.View(ctx, func(tx storage.Tx) error {
		return tx.Get(ctx, key, &got)
	})
	require.NoError(t, err)
	assert.Equal(t, expected, got.Value)
}
