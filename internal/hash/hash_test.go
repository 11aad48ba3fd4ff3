package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt_HashAndCheck(t *testing.T) {
	t.Parallel()

	h := Bcrypt{Cost: bcrypt.MinCost}
	digest, err := h.HashPassword("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", digest)

	assert.True(t, h.CheckPassword(digest, "pw"))
	assert.False(t, h.CheckPassword(digest, "other"))
}

func TestBcrypt_CheckPassword_EmptyHash(t *testing.T) {
	t.Parallel()

	assert.False(t, Bcrypt{}.CheckPassword("", "pw"))
}

func TestBcrypt_HashPassword_TooLong(t *testing.T) {
	t.Parallel()

	h := Bcrypt{Cost: bcrypt.MinCost}
	_, err := h.HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = h.HashPassword(strings.Repeat("a", 72))
	assert.NoError(t, err)
}
