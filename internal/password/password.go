package password

import "golang.org/x/crypto/bcrypt"

// Hash returns a bcrypt hash of the password. bcrypt generates a fresh random
// salt per call, so two hashes of the same password differ.
func Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash. A malformed hash
// is a mismatch, not an error.
func Verify(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
