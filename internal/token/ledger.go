package token

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/rocketscienceinc/quicktactoe/internal/entity"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
)

const decimals = 0

// Ledger keeps the mint and token accounts as ordinary records, so token
// movements commit or roll back together with the game records around them.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

var _ Service = (*Ledger)(nil)

func (that *Ledger) CreateMint(ctx context.Context, tx storage.Tx, auth MintAuthority) error {
	if !auth.valid() {
		return apperror.ErrUnauthorized
	}

	address := MintAddress()
	mint := &entity.TokenMint{
		Decimals:  decimals,
		Authority: auth.name,
		Bump:      address.Bump,
	}

	err := tx.Create(ctx, address.Key, mint)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return ErrMintAlreadyExists
	}

	if err != nil {
		return fmt.Errorf("failed to create mint: %w", err)
	}

	return nil
}

func (that *Ledger) Mint(ctx context.Context, tx storage.Tx, auth MintAuthority, amount uint64, to entity.Identity) error {
	if amount == 0 {
		return ErrZeroAmount
	}

	mint, err := that.authorize(ctx, tx, auth)
	if err != nil {
		return err
	}

	account, err := that.account(ctx, tx, to)
	if err != nil {
		return err
	}

	if mint.Supply > math.MaxUint64-amount || account.Amount > math.MaxUint64-amount {
		return ErrSupplyOverflow
	}

	mint.Supply += amount
	account.Amount += amount

	return that.save(ctx, tx, mint, account)
}

func (that *Ledger) Burn(ctx context.Context, tx storage.Tx, auth MintAuthority, amount uint64, from entity.Identity) error {
	if amount == 0 {
		return ErrZeroAmount
	}

	mint, err := that.authorize(ctx, tx, auth)
	if err != nil {
		return err
	}

	account, err := that.account(ctx, tx, from)
	if err != nil {
		return err
	}

	if account.Amount < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", apperror.ErrInsufficientBalance, from, account.Amount, amount)
	}

	mint.Supply -= amount
	account.Amount -= amount

	return that.save(ctx, tx, mint, account)
}

// Balance reports zero for an identity that never held tokens.
func (that *Ledger) Balance(ctx context.Context, tx storage.Tx, owner entity.Identity) (uint64, error) {
	account, err := that.account(ctx, tx, owner)
	if err != nil {
		return 0, err
	}

	return account.Amount, nil
}

func (that *Ledger) authorize(ctx context.Context, tx storage.Tx, auth MintAuthority) (*entity.TokenMint, error) {
	address := MintAddress()

	var mint entity.TokenMint
	err := tx.Get(ctx, address.Key, &mint)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrMintNotInitialized
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get mint: %w", err)
	}

	if !auth.valid() || mint.Authority != auth.name {
		return nil, apperror.ErrUnauthorized
	}

	return &mint, nil
}

func (that *Ledger) account(ctx context.Context, tx storage.Tx, owner entity.Identity) (*entity.TokenAccount, error) {
	var account entity.TokenAccount
	err := tx.Get(ctx, AccountAddress(owner).Key, &account)
	if errors.Is(err, storage.ErrNotFound) {
		return &entity.TokenAccount{Owner: owner}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get token account: %w", err)
	}

	return &account, nil
}

func (that *Ledger) save(ctx context.Context, tx storage.Tx, mint *entity.TokenMint, account *entity.TokenAccount) error {
	if err := tx.Put(ctx, MintAddress().Key, mint); err != nil {
		return fmt.Errorf("failed to update mint: %w", err)
	}

	if err := tx.Put(ctx, AccountAddress(account.Owner).Key, account); err != nil {
		return fmt.Errorf("failed to update token account: %w", err)
	}

	return nil
}
