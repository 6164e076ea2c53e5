package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists at derived key")
	ErrConflict      = errors.New("transaction conflict: a read record changed before commit")
	ErrReadOnly      = errors.New("write in read-only transaction")
)

// Key addresses one record in the store.
type Key string

// Address is a derived key plus its tag byte. Records store the tag so a
// record read back under a different derivation can be detected.
type Address struct {
	Key  Key
	Bump uint8
}

// Derive computes the address for namespace and seeds. The same inputs
// always produce the same key, which is what makes create-if-absent a
// uniqueness guarantee.
func Derive(namespace string, seeds ...[]byte) Address {
	hash := sha256.New()
	hash.Write([]byte(namespace))
	for _, seed := range seeds {
		hash.Write(seed)
	}
	sum := hash.Sum(nil)

	return Address{
		Key:  Key(namespace + ":" + hex.EncodeToString(sum[:20])),
		Bump: sum[len(sum)-1],
	}
}

// Tx is one atomic unit of reads and writes.
type Tx interface {
	Get(ctx context.Context, key Key, dst any) error
	Exists(ctx context.Context, key Key) (bool, error)
	// Create fails with ErrAlreadyExists when key is occupied.
	Create(ctx context.Context, key Key, value any) error
	Put(ctx context.Context, key Key, value any) error
}

// Store runs transactions. When fn returns an error nothing it wrote is kept.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
