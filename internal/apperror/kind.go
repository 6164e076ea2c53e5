package apperror

import "errors"

// Kind groups errors the way callers react to them.
type Kind string

const (
	KindValidation Kind = "validation"
	KindLifecycle  Kind = "lifecycle"
	KindEconomic   Kind = "economic"
	KindCapacity   Kind = "capacity"
	KindUnknown    Kind = "unknown"
)

var kinds = map[error]Kind{
	ErrSquareOffBoard:     KindValidation,
	ErrSquareAlreadySet:   KindValidation,
	ErrGameNotActive:      KindValidation,
	ErrNotYourTurn:        KindValidation,
	ErrGameAlreadyStarted: KindValidation,
	ErrSelfJoinNotAllowed: KindValidation,
	ErrInvalidIdentity:    KindValidation,

	ErrAlreadyExists:      KindLifecycle,
	ErrAlreadyInitialized: KindLifecycle,
	ErrNotInitialized:     KindLifecycle,
	ErrGameIDMismatch:     KindLifecycle,
	ErrPlayerNotFound:     KindLifecycle,
	ErrGameNotFound:       KindLifecycle,

	ErrRewardAlreadyClaimed: KindEconomic,
	ErrNotWinner:            KindEconomic,
	ErrGameNotWon:           KindEconomic,
	ErrInsufficientBalance:  KindEconomic,
	ErrUnauthorized:         KindEconomic,

	ErrStatOverflow: KindCapacity,
}

// KindOf returns the kind of the first known error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	for known, kind := range kinds {
		if errors.Is(err, known) {
			return kind
		}
	}

	return KindUnknown
}
