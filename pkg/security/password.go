package security

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed = errors.New("password hashing failed")

	MinPasswordLen       = 6
	MinStrictPasswordLen = 8

	commonPasswords = map[string]struct{}{
		"password":    {},
		"12345678":    {},
		"qwerty":      {},
		"abc123":      {},
		"password123": {},
	}
)

// PasswordHasher provides interface for password operations
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a new password hasher using bcrypt
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(bytes), nil
}

func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// PasswordPolicy validates new passwords. The basic policy only enforces a
// minimum length; the strict one also requires mixed character classes.
type PasswordPolicy struct {
	Strict bool
}

// Validate returns one message per violated rule; an empty result means the
// password is acceptable.
func (p PasswordPolicy) Validate(password string) []string {
	var problems []string
	if !p.Strict {
		if len(password) < MinPasswordLen {
			problems = append(problems, "Password must be at least 6 characters long")
		}
		return problems
	}

	if len(password) < MinStrictPasswordLen {
		problems = append(problems, "Password must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !lower {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if !digit {
		problems = append(problems, "Password must contain at least one number")
	}
	if !special {
		problems = append(problems, "Password must contain at least one special character")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "Password is too common. Please choose a stronger password")
	}
	return problems
}
