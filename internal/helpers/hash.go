package helpers

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

// dummyHash is compared against when a login names an unknown email, so the
// failure path costs the same as a real comparison.
var dummyHash, _ = CreateHash("socialhub-timing-equalizer")

func CreateHash(password string) (string, error) {
	argonParams := argon2id.Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  32,
		KeyLength:   32,
	}
	hash, err := argon2id.CreateHash(password, &argonParams)
	if err != nil {
		return "", errors.New("can not create hash password")
	}

	return hash, nil
}

// ComparePassword verifies a plaintext password against a stored digest.
func ComparePassword(password string, hash string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, hash)
	return err == nil && match
}

// CompareDummyPassword burns the same argon2id work as a real comparison.
func CompareDummyPassword(password string) {
	_, _ = argon2id.ComparePasswordAndHash(password, dummyHash)
}
