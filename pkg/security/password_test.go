package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, h.Compare(hash, "s3cret!"))
	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestPasswordPolicyBasic(t *testing.T) {
	p := PasswordPolicy{}
	assert.Empty(t, p.Validate("abcdef"))
	assert.Equal(t, []string{"Password must be at least 6 characters long"}, p.Validate("abc"))
}

func TestPasswordPolicyStrict(t *testing.T) {
	p := PasswordPolicy{Strict: true}

	assert.Empty(t, p.Validate("Clinic#2025"))

	problems := p.Validate("abc")
	assert.Contains(t, problems, "Password must be at least 8 characters long")
	assert.Contains(t, problems, "Password must contain at least one uppercase letter")
	assert.Contains(t, problems, "Password must contain at least one number")
	assert.Contains(t, problems, "Password must contain at least one special character")
	assert.NotContains(t, problems, "Password must contain at least one lowercase letter")

	assert.Contains(t, p.Validate("password123"), "Password is too common. Please choose a stronger password")
}
