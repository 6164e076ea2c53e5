package apperror

import "errors"

// validation errors.
var (
	ErrSquareOffBoard     = errors.New("square is off the board")
	ErrSquareAlreadySet   = errors.New("square is already set")
	ErrGameNotActive      = errors.New("game is not active")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrSelfJoinNotAllowed = errors.New("creator cannot join own game")
	ErrInvalidIdentity    = errors.New("identity is empty")
)

// lifecycle errors.
var (
	ErrAlreadyExists      = errors.New("player already exists")
	ErrAlreadyInitialized = errors.New("program state already initialized")
	ErrNotInitialized     = errors.New("program state is not initialized")
	ErrGameIDMismatch     = errors.New("requested game id does not match next game id")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrGameNotFound       = errors.New("game not found")
)

// economic errors.
var (
	ErrRewardAlreadyClaimed = errors.New("reward already claimed")
	ErrNotWinner            = errors.New("caller is not the winner")
	ErrGameNotWon           = errors.New("game is not won")
	ErrInsufficientBalance  = errors.New("insufficient token balance")
	ErrUnauthorized         = errors.New("mint authority mismatch")
)

// capacity errors.
var ErrStatOverflow = errors.New("statistic counter overflow")
