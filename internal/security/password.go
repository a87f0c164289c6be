package security

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt hashing and verification.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify returns nil when plain matches hashed. A mismatch returns
// bcrypt.ErrMismatchedHashAndPassword; a malformed hash returns a different
// bcrypt error.
func (h *PasswordHasher) Verify(plain, hashed string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
