package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("Classifies wrapped errors", func(t *testing.T) {
		// Given: errors wrapped by upper layers
		cases := map[error]Kind{
			fmt.Errorf("play: %w", ErrSquareOffBoard):            KindValidation,
			fmt.Errorf("create game: %w", ErrGameIDMismatch):     KindLifecycle,
			fmt.Errorf("claim: %w", ErrRewardAlreadyClaimed):     KindEconomic,
			fmt.Errorf("burn fee: %w", ErrInsufficientBalance):   KindEconomic,
			fmt.Errorf("record win: %w", ErrStatOverflow):        KindCapacity,
			fmt.Errorf("join: %w", ErrSelfJoinNotAllowed):        KindValidation,
			fmt.Errorf("initialize: %w", ErrAlreadyInitialized): KindLifecycle,
		}

		for err, expected := range cases {
			// When: classifying the error
			kind := KindOf(err)

			// Then: the kind should match the taxonomy
			assert.Equal(t, expected, kind, err.Error())
		}
	})

	t.Run("Unknown errors", func(t *testing.T) {
		assert.Equal(t, KindUnknown, KindOf(errors.New("redis down")))
		assert.Equal(t, KindUnknown, KindOf(nil))
	})
}
