package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/rocketscienceinc/quicktactoe/internal/entity"
)

// Create returns a fresh game owned by creator. The O seat stays empty until Start.
func Create(creator entity.Identity, id uint64, bump uint8) *entity.Game {
	return &entity.Game{
		ID:      id,
		PlayerX: creator,
		PlayerO: nil,
		State:   entity.StateNotStarted,
		Turn:    0,
		Bump:    bump,
		Winner:  nil,
	}
}

// Start seats joiner as player O and hands turn 1 to player X.
func Start(game *entity.Game, joiner entity.Identity) error {
	if !game.IsNotStarted() || game.IsJoined() {
		return apperror.ErrGameAlreadyStarted
	}

	if joiner == game.PlayerX {
		return apperror.ErrSelfJoinNotAllowed
	}

	game.PlayerO = joiner.Ptr()
	game.State = entity.StateActive
	game.Turn = 1

	return nil
}

// CurrentPlayerIndex is 1 on X's turns and 2 on O's. Only meaningful while the game is active.
func CurrentPlayerIndex(game *entity.Game) uint8 {
	return ((game.Turn - 1) % 2) + 1
}

func CurrentPlayer(game *entity.Game) entity.Identity {
	if CurrentPlayerIndex(game) == 1 {
		return game.PlayerX
	}

	if game.PlayerO == nil {
		return ""
	}

	return *game.PlayerO
}

func CurrentPlayerSign(game *entity.Game) entity.Mark {
	if CurrentPlayerIndex(game) == 1 {
		return entity.MarkX
	}

	return entity.MarkO
}

// OtherPlayer is the player waiting for the current move.
func OtherPlayer(game *entity.Game) entity.Identity {
	if CurrentPlayerIndex(game) == 2 {
		return game.PlayerX
	}

	if game.PlayerO == nil {
		return ""
	}

	return *game.PlayerO
}

// Play applies the current player's mark at square and settles the outcome.
// acting is the mover's record, other the opponent's. On error game, acting
// and other are left as they were.
func Play(game *entity.Game, square entity.Square, acting, other *entity.Player) error {
	if !game.IsActive() {
		return apperror.ErrGameNotActive
	}

	if acting.Owner != CurrentPlayer(game) {
		return apperror.ErrNotYourTurn
	}

	if err := validateSquare(game, square); err != nil {
		return err
	}

	gameBefore, actingBefore, otherBefore := *game, *acting, *other

	if err := applyMove(game, square, acting, other); err != nil {
		*game, *acting, *other = gameBefore, actingBefore, otherBefore
		return err
	}

	return nil
}

// validateSquare - checks that square is on the board and still empty.
func validateSquare(game *entity.Game, square entity.Square) error {
	if !square.OnBoard() {
		return fmt.Errorf("%w: %s", apperror.ErrSquareOffBoard, square)
	}

	if game.Board[square.Row][square.Column] != entity.EmptyCell {
		return fmt.Errorf("%w: %s", apperror.ErrSquareAlreadySet, square)
	}

	return nil
}

func applyMove(game *entity.Game, square entity.Square, acting, other *entity.Player) error {
	game.Board[square.Row][square.Column] = CurrentPlayerSign(game)

	state, _ := Outcome(game.Board)

	switch state {
	case entity.StateWon:
		// the winner is read before the turn would advance, so it is the mover.
		game.State = entity.StateWon
		game.Winner = CurrentPlayer(game).Ptr()

		if err := acting.RecordWin(); err != nil {
			return fmt.Errorf("record win: %w", err)
		}
		if err := other.RecordLose(); err != nil {
			return fmt.Errorf("record loss: %w", err)
		}
	case entity.StateTie:
		game.State = entity.StateTie

		if err := acting.RecordTie(); err != nil {
			return fmt.Errorf("record tie: %w", err)
		}
		if err := other.RecordTie(); err != nil {
			return fmt.Errorf("record tie: %w", err)
		}
	default:
		game.Turn++
	}

	return nil
}
