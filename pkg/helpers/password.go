package helpers

import "golang.org/x/crypto/bcrypt"

// bcryptCost stays at the library default; raise it here if hardware
// allows without slowing login noticeably.
const bcryptCost = bcrypt.DefaultCost

// HashPassword hashes a plain-text password with bcrypt.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword reports whether plain matches the stored bcrypt
// hash.
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
