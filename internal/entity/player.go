package entity

import (
	"math"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
)

// Record holds per-player game statistics.
type Record struct {
	Wins   uint8 `json:"wins"`
	Losses uint8 `json:"losses"`
	Ties   uint8 `json:"ties"`
}

type Player struct {
	Owner                Identity `json:"owner"`
	Record               Record   `json:"record"`
	StarterGrantReceived bool     `json:"starter_grant_received"`
	RewardClaimed        bool     `json:"reward_claimed"`
	Bump                 uint8    `json:"bump"`
}

func NewPlayer(owner Identity, bump uint8) *Player {
	return &Player{
		Owner: owner,
		Bump:  bump,
	}
}

// GrantStarterTokens marks the starter grant as delivered.
func (that *Player) GrantStarterTokens() {
	that.StarterGrantReceived = true
}

func (that *Player) RecordWin() error {
	return increment(&that.Record.Wins)
}

func (that *Player) RecordLose() error {
	return increment(&that.Record.Losses)
}

func (that *Player) RecordTie() error {
	return increment(&that.Record.Ties)
}

// ClaimReward flips the claim flag. The flag is scoped to the player, so an
// identity can claim at most one reward across all of its games.
func (that *Player) ClaimReward() error {
	if that.RewardClaimed {
		return apperror.ErrRewardAlreadyClaimed
	}

	that.RewardClaimed = true

	return nil
}

// counters fail instead of wrapping or saturating.
func increment(counter *uint8) error {
	if *counter == math.MaxUint8 {
		return apperror.ErrStatOverflow
	}

	*counter++

	return nil
}
