package entity

import "github.com/rocketscienceinc/quicktactoe/internal/apperror"

// Identity is an opaque, already authenticated participant reference.
type Identity string

func (that Identity) Validate() error {
	if that == "" {
		return apperror.ErrInvalidIdentity
	}

	return nil
}

func (that Identity) Bytes() []byte {
	return []byte(that)
}

func (that Identity) String() string {
	return string(that)
}

// Ptr returns a pointer to a copy of the identity.
func (that Identity) Ptr() *Identity {
	return &that
}
