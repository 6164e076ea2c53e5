package entity

import (
	"testing"

	"github.com/rocketscienceinc/quicktactoe/internal/apperror"
	"github.com/stretchr/testify/assert"
)

func TestIdentity_Validate(t *testing.T) {
	assert.NoError(t, Identity("alice").Validate())
	assert.ErrorIs(t, Identity("").Validate(), apperror.ErrInvalidIdentity)
}

func TestIdentity_Ptr(t *testing.T) {
	id := Identity("alice")
	ptr := id.Ptr()

	*ptr = "bob"

	assert.Equal(t, Identity("alice"), id)
}
