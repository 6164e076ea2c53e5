package repository

import (
	"encoding/binary"
	"errors"

	"github.com/rocketscienceinc/quicktactoe/internal/entity"
	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
)

// ErrAddressMismatch means a record's stored tag does not belong to the key it was read from.
var ErrAddressMismatch = errors.New("record tag does not match its derived address")

func ProgramStateAddress() storage.Address {
	return storage.Derive("program_state")
}

func PlayerAddress(owner entity.Identity) storage.Address {
	return storage.Derive("player", owner.Bytes())
}

func GameAddress(id uint64) storage.Address {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, id)

	return storage.Derive("new_game", seed)
}
