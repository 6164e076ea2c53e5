package token

import (
	"context"
	"errors"

	"github.com/rocketscienceinc/quicktactoe/internal/entity"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
)

var (
	ErrMintNotInitialized = errors.New("play token mint is not initialized")
	ErrMintAlreadyExists  = errors.New("play token mint already exists")
	ErrZeroAmount         = errors.New("token amount must be positive")
	ErrSupplyOverflow     = errors.New("token supply overflow")
)

// MintAuthority is the capability required to mint and burn play tokens.
// Its zero value authorizes nothing.
type MintAuthority struct {
	name string
}

func NewMintAuthority(name string) MintAuthority {
	return MintAuthority{name: name}
}

func (that MintAuthority) String() string {
	return that.name
}

func (that MintAuthority) valid() bool {
	return that.name != ""
}

// Service moves play tokens. Every call is staged in the caller's transaction.
type Service interface {
	CreateMint(ctx context.Context, tx storage.Tx, auth MintAuthority) error
	Mint(ctx context.Context, tx storage.Tx, auth MintAuthority, amount uint64, to entity.Identity) error
	Burn(ctx context.Context, tx storage.Tx, auth MintAuthority, amount uint64, from entity.Identity) error
	Balance(ctx context.Context, tx storage.Tx, owner entity.Identity) (uint64, error)
}

func MintAddress() storage.Address {
	return storage.Derive("play_token_mint")
}

func AccountAddress(owner entity.Identity) storage.Address {
	return storage.Derive("token_account", owner.Bytes())
}
