package crypto

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt cost used when none is configured
const DefaultCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

// dummyHash is compared against when no stored hash exists, so a lookup miss
// costs about as much as a wrong password.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3m1mTaMClzBOaLJ.HYSH4y6")

// HashPassword hashes a plaintext password with bcrypt at the given cost.
// A cost outside bcrypt's range falls back to DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnCompare runs a bcrypt comparison against a fixed hash and discards the result
func BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
